package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sage-ingest/sage/internal/model"
)

type channelConfigDoc struct {
	APIKey         string   `yaml:"api_key"`
	AllowedSenders []string `yaml:"allowed_senders"`
	AllowedHosts   []string `yaml:"allowed_hosts"`
}

type senderDoc struct {
	Kind                docKind                     `yaml:"kind"`
	SenderID            string                      `yaml:"sender_id"`
	ResponsiblePerson   string                      `yaml:"responsible_person"`
	AllowedMethods      []string                    `yaml:"allowed_methods"`
	ChannelConfig       map[string]channelConfigDoc `yaml:"channel_config"`
	SubmissionFrequency string                      `yaml:"submission_frequency"`
	Deadline            string                      `yaml:"deadline"`
	Packages            []string                    `yaml:"packages"`
}

func parseSender(src SourceDocument) (model.Sender, error) {
	var doc senderDoc
	if err := yaml.Unmarshal(src.Raw, &doc); err != nil {
		return model.Sender{}, fmt.Errorf("%s: parsing sender: %w", src.Path, err)
	}
	if doc.SenderID == "" {
		return model.Sender{}, fmt.Errorf("%s: sender document is missing 'sender_id'", src.Path)
	}

	sender := model.Sender{
		SenderID:            doc.SenderID,
		ResponsiblePerson:   doc.ResponsiblePerson,
		SubmissionFrequency: model.Frequency(doc.SubmissionFrequency),
		Deadline:            doc.Deadline,
		Packages:            doc.Packages,
		SourcePath:          src.Path,
		ChannelConfig:       map[model.Channel]model.ChannelConfig{},
	}
	for _, m := range doc.AllowedMethods {
		sender.AllowedMethods = append(sender.AllowedMethods, model.Channel(m))
	}
	for ch, cfg := range doc.ChannelConfig {
		resolved, err := resolveSecret(cfg.APIKey)
		if err != nil {
			return model.Sender{}, fmt.Errorf("%s: channel %q: %w", src.Path, ch, err)
		}
		sender.ChannelConfig[model.Channel(ch)] = model.ChannelConfig{
			APIKey:         resolved,
			AllowedSenders: cfg.AllowedSenders,
			AllowedHosts:   cfg.AllowedHosts,
		}
	}
	return sender, nil
}
