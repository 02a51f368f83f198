package classifier

// The rule tables below encode the vendor and product knowledge of the
// Machinecraft stores team. Order matters everywhere: the first matching
// rule wins, so more specific keywords must stay above generic ones.

type BrandRule struct {
	Keyword string
	Brand   string
}

type CategoryRule struct {
	Category string
	Keywords []string
}

// PartShapeRule maps a part-number pattern to a category when no keyword
// matched. Patterns are anchored regular expressions over the raw part code.
type PartShapeRule struct {
	Pattern  string
	Category string
}

type Tables struct {
	Brands []BrandRule
	// Categories is checked against the part number first, then the
	// description.
	Categories []CategoryRule
	// BrandCategories assigns a category purely from the resolved brand
	// when no keyword rule fired.
	BrandCategories map[string]string
	PartShapes      []PartShapeRule
}

const (
	UnknownBrand  = "Unknown Brand"
	Uncategorized = "Uncategorized"

	// TablesVersion changes whenever the rule data below changes, so run
	// logs record which vocabulary classified a given Silver build.
	TablesVersion = "1.0.0"
)

func DefaultTables() *Tables {
	return &Tables{
		Brands: []BrandRule{
			{"mitsubishi", "Mitsubishi"},
			{"festo", "FESTO"},
			{"smc", "SMC"},
			{"eaton", "Eaton"},
			{"omron", "Omron"},
			{"sick", "SICK"},
			{"phoenix", "Phoenix"},
			{"pneumax", "Pneumax"},
			{"unison", "Unison"},
			{"trinity", "Trinity"},
			{"teknic", "Teknic"},
			{"lapp", "LAPP"},
			{"bearing", "Bearing"},
			{"cylinder", "Cylinder"},
			{"gear", "Gearbox"},
			{"heater", "Heater"},
			{"linear", "Linear"},
			{"sprocket", "Sprocket"},
			{"ceramix", "Ceramix"},
			{"crydom", "Crydom"},
			{"ebm", "EBM"},
			{"elstien", "Elstien"},
			{"grand", "Grand Polycoat"},
			{"hicool", "Hicool"},
			{"indo", "Indo Electricals"},
			{"nvent", "Nvent Hoffman"},
			{"precision", "Precision Valve"},
			{"pnf", "PNF"},
			{"wohner", "Wohner"},
			{"autonics", "Autonics"},
			{"albro", "Albro"},
			{"apratek", "Apratek"},
			{"siemens", "Siemens"},
			{"murr", "Murr"},
			{"murrelektronik", "Murr"},
			{"bonfiglioli", "Bonfiglioli"},
			{"becker", "Becker"},
			{"sunchu", "Sunchu"},
			{"yyc", "YYC"},
			{"hetronik", "Hetronik"},
			{"flexicab", "Flexicab"},
			{"hrc", "HRC"},
			{"iac", "IAC"},
			{"lathe", "Lathe"},
			{"nlmk", "NLMK"},
			{"sapt", "SAPT"},
			{"foliplast", "Foliplast"},
			{"nyxinc", "Nyxinc"},
			{"self", "Self Moulds"},
			{"plastoform", "Plastoform"},
			{"arihant", "Arihant"},
			{"looknorth", "Looknorth"},
			{"shoda", "Shoda"},
			{"supreme", "Supreme"},
			{"asun", "Asun"},
			{"big", "Big Bear"},
		},
		Categories: []CategoryRule{
			{"PLC & Control Systems", []string{
				"fx", "plc", "cpu", "input", "output", "module", "controller",
				"fx2n", "fx3u", "fx5u", "programmable",
			}},
			{"Motors & Drives", []string{
				"motor", "servo", "drive", "inverter", "vfd", "stepper",
				"ac motor", "dc motor", "servo motor", "stepper motor",
			}},
			{"Pneumatic Components", []string{
				"cylinder", "valve", "pneumatic", "festo", "smc", "pneumax",
				"air", "pneumatic cylinder", "air cylinder", "pneumatic valve",
			}},
			{"Electrical Components", []string{
				"contactor", "relay", "mcb", "mccb", "fuse", "terminal",
				"cable", "switch", "breaker", "starter", "electrical",
			}},
			{"Sensors & Instrumentation", []string{
				"sensor", "proximity", "photo", "encoder", "sick", "omron",
				"inductive", "capacitive", "pressure sensor", "temperature sensor",
			}},
			{"Mechanical Components", []string{
				"bearing", "gear", "sprocket", "chain", "rail", "linear",
				"ball bearing", "roller bearing", "gearbox", "gear box", "linear rail",
			}},
			{"Heating Elements", []string{
				"heater", "heating", "ceramic", "ceramix",
				"heating element", "band heater", "cartridge heater",
			}},
			{"Enclosures & Cabinets", []string{
				"enclosure", "cabinet", "box", "nvent", "wohner",
				"panel", "control panel", "electrical panel",
			}},
			{"Cables & Connectors", []string{
				"cable", "connector", "lapp", "murrelektronik", "wire",
				"cable gland", "terminal block", "plug", "socket",
			}},
			{"Fasteners & Hardware", []string{
				"bolt", "nut", "screw", "washer", "fastener", "hardware",
				"stud", "rivet", "pin",
			}},
			{"Tools & Equipment", []string{
				"tool", "equipment", "gauge", "meter", "tester",
				"caliper", "micrometer",
			}},
			{"Hydraulic Components", []string{
				"hydraulic", "pump", "hose", "fitting", "hydraulic cylinder",
			}},
			{"Safety Equipment", []string{
				"safety", "guard", "emergency", "stop",
				"safety switch", "emergency stop",
			}},
		},
		BrandCategories: map[string]string{
			"Mitsubishi": "PLC & Control Systems",
			"Siemens":    "PLC & Control Systems",
			"Omron":      "PLC & Control Systems",
			"FESTO":      "Pneumatic Components",
			"SMC":        "Pneumatic Components",
			"Pneumax":    "Pneumatic Components",
			"Eaton":      "Electrical Components",
			"Phoenix":    "Electrical Components",
			"Wohner":     "Electrical Components",
			"SICK":       "Sensors & Instrumentation",
			"LAPP":       "Cables & Connectors",
			"Murr":       "Cables & Connectors",
		},
		PartShapes: []PartShapeRule{
			{`^[A-Z]{2,4}\d+`, "Electrical Components"},
			{`^[A-Z]{1,3}\d+[A-Z]`, "Mechanical Components"},
		},
	}
}

// CategoryNames returns the closed taxonomy in table order, used to reject
// out-of-vocabulary answers from the AI validator.
func (t *Tables) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories)+1)
	for _, rule := range t.Categories {
		names = append(names, rule.Category)
	}
	names = append(names, Uncategorized)
	return names
}
