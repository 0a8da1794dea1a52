package model

import "testing"

func TestCatalog_FieldByName(t *testing.T) {
	c := Catalog{Fields: []FieldSpec{{Name: "id"}, {Name: "amount"}}}
	if _, ok := c.FieldByName("missing"); ok {
		t.Error("FieldByName(missing) should not be found")
	}
	f, ok := c.FieldByName("amount")
	if !ok || f.Name != "amount" {
		t.Errorf("FieldByName(amount) = %+v, %v", f, ok)
	}
}

func TestPackage_CatalogByLogicalName(t *testing.T) {
	p := Package{Catalogs: []CatalogRef{{LogicalName: "orders"}, {LogicalName: "customers"}}}
	if _, ok := p.CatalogByLogicalName("missing"); ok {
		t.Error("CatalogByLogicalName(missing) should not be found")
	}
	ref, ok := p.CatalogByLogicalName("customers")
	if !ok || ref.LogicalName != "customers" {
		t.Errorf("CatalogByLogicalName(customers) = %+v, %v", ref, ok)
	}
}

func TestSender_AllowsPackage(t *testing.T) {
	s := Sender{Packages: []string{"customers_feed", "orders_feed"}}
	if !s.AllowsPackage("orders_feed") {
		t.Error("AllowsPackage(orders_feed) should be true")
	}
	if s.AllowsPackage("invoices_feed") {
		t.Error("AllowsPackage(invoices_feed) should be false")
	}
}

func TestSender_AllowsChannel(t *testing.T) {
	s := Sender{AllowedMethods: []Channel{ChannelAPI, ChannelSFTP}}
	if !s.AllowsChannel(ChannelAPI) {
		t.Error("AllowsChannel(api) should be true")
	}
	if s.AllowsChannel(ChannelEmail) {
		t.Error("AllowsChannel(email) should be false")
	}
}
