package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
icdtest:
  liver_mild:
    name: "Mild liver disease"
    weight: 3
    depends_on: ["liver_severe"]
    codes:
      - condition: any
        codes: ["K74.6"]
  liver_severe:
    name: "Severe liver disease"
    weight: 10
    codes:
      - condition: any
        codes: ["K74.7"]
  diabetes_complicated:
    name: "Diabetes with complication"
    weight: 2
    codes:
      - condition: both
        codes:
          - ["E10", "E11"]
          - ["G63.2", "N08.3"]
`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	table, ok := reg.Table("icdtest")
	if !ok {
		t.Fatal("expected icdtest version")
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(table))
	}

	mild := table["liver_mild"]
	if mild.Name != "Mild liver disease" || mild.Weight != 3 {
		t.Errorf("unexpected liver_mild: %+v", mild)
	}
	if len(mild.Codes) != 1 || mild.Codes[0].Condition != ConditionAny {
		t.Fatalf("unexpected liver_mild groups: %+v", mild.Codes)
	}
	if mild.Codes[0].Codes[0] != "K74.6" {
		t.Errorf("unexpected liver_mild codes: %v", mild.Codes[0].Codes)
	}
	if len(mild.DependsOn) != 1 || mild.DependsOn[0] != "liver_severe" {
		t.Errorf("unexpected depends_on: %v", mild.DependsOn)
	}

	dm := table["diabetes_complicated"]
	if len(dm.Codes) != 1 || dm.Codes[0].Condition != ConditionBoth {
		t.Fatalf("unexpected diabetes groups: %+v", dm.Codes)
	}
	if len(dm.Codes[0].Groups) != 2 {
		t.Errorf("expected 2 sub-groups, got %d", len(dm.Codes[0].Groups))
	}
	if dm.Codes[0].Codes != nil {
		t.Errorf("both-condition group must not populate flat codes: %v", dm.Codes[0].Codes)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"unknown condition",
			"v1:\n  c1:\n    name: C1\n    weight: 1\n    codes:\n      - condition: either\n        codes: [\"A00\"]\n",
			"unknown condition",
		},
		{
			"any without codes",
			"v1:\n  c1:\n    name: C1\n    weight: 1\n    codes:\n      - condition: any\n        codes: []\n",
			"no codes",
		},
		{
			"both without sub-groups",
			"v1:\n  c1:\n    name: C1\n    weight: 1\n    codes:\n      - condition: both\n        codes: []\n",
			"no sub-groups",
		},
		{
			"negative weight",
			"v1:\n  c1:\n    name: C1\n    weight: -1\n    codes:\n      - condition: any\n        codes: [\"A00\"]\n",
			"negative weight",
		},
		{
			"dangling depends_on",
			"v1:\n  c1:\n    name: C1\n    weight: 1\n    depends_on: [\"missing\"]\n    codes:\n      - condition: any\n        codes: [\"A00\"]\n",
			"unknown category",
		},
		{
			"self depends_on",
			"v1:\n  c1:\n    name: C1\n    weight: 1\n    depends_on: [\"c1\"]\n    codes:\n      - condition: any\n        codes: [\"A00\"]\n",
			"references itself",
		},
		{
			"missing name",
			"v1:\n  c1:\n    weight: 1\n    codes:\n      - condition: any\n        codes: [\"A00\"]\n",
			"missing name",
		},
		{
			"empty document",
			"",
			"no mapping versions",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadShippedMapping(t *testing.T) {
	reg, err := Load(filepath.Join("..", "..", "mappings", "charlson.yaml"))
	if err != nil {
		t.Fatalf("shipped mapping failed to load: %v", err)
	}

	for _, version := range []string{"icd2024gm", "icd2024gm_quan"} {
		table, ok := reg.Table(version)
		if !ok {
			t.Fatalf("expected version %s", version)
		}
		if len(table) != 17 {
			t.Errorf("%s: expected 17 categories, got %d", version, len(table))
		}
		for _, id := range []string{"liver_mild", "diabetes_simple", "malignancy"} {
			if len(table[id].DependsOn) == 0 {
				t.Errorf("%s/%s: expected depends_on", version, id)
			}
		}
	}

	// Quan weights diverge from Deyo for myocardial infarction.
	deyo, _ := reg.Table("icd2024gm")
	quan, _ := reg.Table("icd2024gm_quan")
	if deyo["myocardial_infarction"].Weight != 1 || quan["myocardial_infarction"].Weight != 0 {
		t.Error("expected Deyo weight 1 and Quan weight 0 for myocardial infarction")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(os.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
