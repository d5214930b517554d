package names

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Daniel Cormier", "daniel cormier"},
		{"  JOSÉ   ALDO ", "jose aldo"},
		{"Khabib Nurmagomedov", "khabib nurmagomedov"},
		{"O'Malley, Sean", "o malley sean"},
		{"B.J. Penn", "b j penn"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatch_Exact(t *testing.T) {
	if !Match("Daniel Cormier", "Daniel Cormier") {
		t.Error("identical names should match")
	}
	if !Match("daniel CORMIER", "Daniel Cormier") {
		t.Error("case difference should not prevent a match")
	}
	if !Match("José Aldo", "Jose Aldo") {
		t.Error("diacritics should fold away")
	}
}

func TestMatch_TokenContainment(t *testing.T) {
	if !Match("Cormier", "Daniel Cormier") {
		t.Error("surname alone should match the full name")
	}
	if !Match("Daniel Cormier", "Daniel Ryan Cormier") {
		t.Error("dropped middle name should match")
	}
	if !Match("Dan Cormier", "Daniel Cormier") {
		t.Error("nickname prefix should match the full first name")
	}
}

func TestMatch_NicknamePrefixTooShort(t *testing.T) {
	// Two-letter prefixes are not accepted as nicknames
	if Match("Da Cormier", "Daniel Cormier") {
		t.Error("two-letter prefix should not be treated as a nickname")
	}
}

func TestMatch_AliasTable(t *testing.T) {
	c := NewComparer(DefaultThreshold, Aliases{"bones": "jon"})
	if !c.Match("Bones Jones", "Jon Jones") {
		t.Error("alias table should map nickname to canonical name")
	}
}

func TestMatch_Misspelling(t *testing.T) {
	// One transposition in a long name clears the 0.82 threshold
	if !Match("Khabib Nurmagomedov", "Khabib Nurmagomedvo") {
		t.Error("minor misspelling should match")
	}
}

func TestMatch_DifferentPeople(t *testing.T) {
	if Match("Jon Jones", "Daniel Cormier") {
		t.Error("unrelated names should not match")
	}
	if Match("", "Daniel Cormier") {
		t.Error("empty name should never match")
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	if got := Similarity("Daniel Cormier", "Daniel Cormier"); got != 1.0 {
		t.Errorf("identical names: similarity = %v, want 1.0", got)
	}
	if got := Similarity("Cormier", "Daniel Cormier"); got != 1.0 {
		t.Errorf("token containment: similarity = %v, want 1.0", got)
	}
	if got := Similarity("", "Daniel Cormier"); got != 0 {
		t.Errorf("empty name: similarity = %v, want 0", got)
	}
	got := Similarity("Jon Jones", "Daniel Cormier")
	if got < 0 || got >= 0.82 {
		t.Errorf("unrelated names: similarity = %v, want low", got)
	}
}

func TestComparer_ThresholdOverride(t *testing.T) {
	strict := NewComparer(0.99, nil)
	if strict.Match("Khabib Nurmagomedov", "Khabib Nurmagomedvo") {
		t.Error("strict threshold should reject the misspelling")
	}
	loose := NewComparer(0.5, nil)
	if !loose.Match("Cormier", "Cormyer") {
		t.Error("loose threshold should accept the variant spelling")
	}
}
