package classifier_test

import (
	"testing"

	"github.com/machinecraft/inventory_backend/classifier"
)

func TestBrandFromPath(t *testing.T) {
	c := classifier.New(nil)

	cases := []struct {
		path string
		want string
	}{
		{"FESTO_pricelist.xlsx", "FESTO"},
		{"/shared/vendors/eaton_mcb.xlsx", "Eaton"},
		{"Mitsubishi PLC Stock 2024.xlsx", "Mitsubishi"},
		{"/drive/SMC/valves_current.xlsx", "SMC"},
		{"unknown_vendor.xlsx", "Unknown Brand"},
	}
	for _, tc := range cases {
		if got := c.BrandFromPath(tc.path); got != tc.want {
			t.Fatalf("BrandFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestCategorize_KeywordRules(t *testing.T) {
	c := classifier.New(nil)

	cases := []struct {
		part string
		desc string
		want string
	}{
		{"FX3U-32MR", "Base unit", "PLC & Control Systems"},
		{"", "Servo motor 750W", "Motors & Drives"},
		{"DSBC-32-100", "Pneumatic cylinder", "Pneumatic Components"},
		{"", "MCB 32A C-curve", "Electrical Components"},
		{"", "Proximity sensor inductive M12", "Sensors & Instrumentation"},
		{"", "Ball bearing 6204", "Mechanical Components"},
		{"", "Band heater 220V", "Heating Elements"},
	}
	for _, tc := range cases {
		if got := c.Categorize(tc.part, tc.desc, ""); got != tc.want {
			t.Fatalf("Categorize(%q, %q) = %q, want %q", tc.part, tc.desc, got, tc.want)
		}
	}
}

func TestCategorize_BrandFallback(t *testing.T) {
	c := classifier.New(nil)
	if got := c.Categorize("ZZZ999X9", "", "FESTO"); got != "Pneumatic Components" {
		t.Fatalf("brand fallback = %q, want Pneumatic Components", got)
	}
	if got := c.Categorize("ZZZ999X9", "", "SICK"); got != "Sensors & Instrumentation" {
		t.Fatalf("brand fallback = %q, want Sensors & Instrumentation", got)
	}
}

func TestCategorize_PartShapeFallback(t *testing.T) {
	c := classifier.New(nil)
	// Two to four leading capitals then digits reads as an electrical part code.
	if got := c.Categorize("ZZZ999", "", ""); got != "Electrical Components" {
		t.Fatalf("shape fallback = %q, want Electrical Components", got)
	}
	if got := c.Categorize("z-!", "", ""); got != "Uncategorized" {
		t.Fatalf("no rule should leave Uncategorized, got %q", got)
	}
}

func TestClassify_Confidence(t *testing.T) {
	c := classifier.New(nil)

	r := c.Classify("FESTO_pricelist.xlsx", "DSBC-32-100", "Pneumatic cylinder 32mm")
	if r.Brand != "FESTO" || r.Category != "Pneumatic Components" {
		t.Fatalf("unexpected classification %+v", r)
	}
	if r.Confidence != "medium" {
		t.Fatalf("resolved brand and category should be medium confidence, got %q", r.Confidence)
	}

	r = c.Classify("misc.xlsx", "z-!", "")
	if r.Confidence != "low" {
		t.Fatalf("unresolved classification should be low confidence, got %q", r.Confidence)
	}
}
