package domain

import (
	"math"
	"testing"

	"insights/internal/shared/domain"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name  string
		raw   domain.RawValue
		want  float64
		valid bool
	}{
		{"rupee with separators", domain.Text("₹1,234.50"), 1234.50, true},
		{"percent", domain.Text("12%"), 12, true},
		{"letters only", domain.Text("abc"), 0, false},
		{"missing", domain.Missing(), 0, false},
		{"blank text", domain.Text("   "), 0, false},
		{"zero text is a value", domain.Text("0"), 0, true},
		{"zero numeric is a value", domain.Numeric(0), 0, true},
		{"stray characters", domain.Text(" 399 INR "), 399, true},
		{"plain numeric", domain.Numeric(42.5), 42.5, true},
		{"NaN", domain.Numeric(math.NaN()), 0, false},
		{"positive infinity", domain.Numeric(math.Inf(1)), 0, false},
		{"negative infinity", domain.Numeric(math.Inf(-1)), 0, false},
		{"two decimal points", domain.Text("1.2.3"), 0, false},
		{"nil via RawFrom", domain.RawFrom(nil), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := NormalizeNumber(tt.raw)
			v, ok := got.Get()
			if ok != tt.valid {
				t.Fatalf("valid = %v, want %v", ok, tt.valid)
			}
			if ok && v != tt.want {
				t.Errorf("value = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestNormalizeNumber_Idempotent(t *testing.T) {
	inputs := []domain.RawValue{
		domain.Text("₹1,234.50"),
		domain.Text("12%"),
		domain.Text("0.0001"),
		domain.Numeric(1e21),
		domain.Numeric(3.14159),
		domain.Numeric(0),
	}

	for _, in := range inputs {
		once, _ := NormalizeNumber(in)
		v, ok := once.Get()
		if !ok {
			t.Fatalf("NormalizeNumber(%q) returned null", in.String())
		}
		twice, _ := NormalizeNumber(domain.Numeric(v))
		if w, _ := twice.Get(); w != v {
			t.Errorf("NormalizeNumber not idempotent for %q: %v then %v", in.String(), v, w)
		}
	}
}

func TestNormalizeNumber_DiagnosticOnFailure(t *testing.T) {
	_, note := NormalizeNumber(domain.Text("n/a"))
	if note == "" {
		t.Error("expected a diagnostic note for an unparseable value")
	}
	_, note = NormalizeNumber(domain.Missing())
	if note != "" {
		t.Errorf("missing value should not produce a note, got %q", note)
	}
}

func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		name  string
		raw   domain.RawValue
		want  float64
		valid bool
	}{
		{"sentinel", domain.Text("|"), 0, false},
		{"sentinel with spaces", domain.Text(" | "), 0, false},
		{"above range", domain.Numeric(6), 0, false},
		{"below range", domain.Text("0"), 0, false},
		{"in range numeric", domain.Numeric(4.0), 4.0, true},
		{"in range text", domain.Text("4.2"), 4.2, true},
		{"lower bound", domain.Text("1"), 1, true},
		{"upper bound", domain.Numeric(5), 5, true},
		{"missing", domain.Missing(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := NormalizeRating(tt.raw)
			v, ok := got.Get()
			if ok != tt.valid {
				t.Fatalf("valid = %v, want %v", ok, tt.valid)
			}
			if ok && v != tt.want {
				t.Errorf("value = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		name  string
		raw   domain.RawValue
		want  int64
		valid bool
	}{
		{"grouped", domain.Text("24,269"), 24269, true},
		{"truncates", domain.Numeric(9.99), 9, true},
		{"truncates text", domain.Text("7.5"), 7, true},
		{"NaN", domain.Numeric(math.NaN()), 0, false},
		{"too large", domain.Numeric(1e30), 0, false},
		{"empty", domain.Text(""), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := NormalizeCount(tt.raw)
			v, ok := got.Get()
			if ok != tt.valid {
				t.Fatalf("valid = %v, want %v", ok, tt.valid)
			}
			if v != tt.want {
				t.Errorf("value = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestClean_DegradesFieldsNotRows(t *testing.T) {
	raw := RawProduct{
		ID:                 "p1",
		ProductName:        "Cable",
		Category:           "Computers|Accessories",
		DiscountedPrice:    domain.Text("₹399"),
		ActualPrice:        domain.Text("garbage"),
		DiscountPercentage: domain.Text("64%"),
		Rating:             domain.Text("|"),
		RatingCount:        domain.Text("24,269"),
	}

	p, diags := Clean(raw)

	if v, _ := p.DiscountedPrice.Get(); v != 399 {
		t.Errorf("DiscountedPrice = %v, want 399", v)
	}
	if p.ActualPrice.Valid() {
		t.Error("ActualPrice should be null")
	}
	if p.Rating.Valid() {
		t.Error("Rating should be null")
	}
	if v, _ := p.RatingCount.Get(); v != 24269 {
		t.Errorf("RatingCount = %v, want 24269", v)
	}
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %+v", len(diags), diags)
	}
	for _, d := range diags {
		if d.ProductID != "p1" {
			t.Errorf("diagnostic ProductID = %q, want p1", d.ProductID)
		}
	}
}

func TestCleanBatch_Presence(t *testing.T) {
	batch := CleanBatch([]RawProduct{
		{ID: "a", ActualPrice: domain.Text("100")},
		{ID: "b", ActualPrice: domain.Text("x"), Rating: domain.Numeric(4)},
	})

	if !batch.Has(FieldActualPrice) || !batch.Has(FieldRating) {
		t.Error("expected actual_price and rating to be present")
	}
	missing := batch.Missing(FieldDiscountedPrice, FieldRating)
	if len(missing) != 1 || missing[0] != FieldDiscountedPrice {
		t.Errorf("Missing = %v, want [discounted_price]", missing)
	}
	if len(batch.Products) != 2 || batch.Products[0].ID != "a" {
		t.Error("CleanBatch must keep fetch order")
	}
}

func BenchmarkNormalizeNumber(b *testing.B) {
	raw := domain.Text("₹1,234.50")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = NormalizeNumber(raw)
	}
}

func TestCriteria_Match(t *testing.T) {
	products := []Product{
		{ID: "a", Category: "Electronics|Phones", Rating: domain.NewNullFloat(4.5)},
		{ID: "b", Category: "Home|Kitchen", Rating: domain.NewNullFloat(3.0)},
		{ID: "c", Category: "electronics|Cables", Rating: domain.NullFloat{}},
		{ID: "d", Category: "Toys (Kids)", Rating: domain.NewNullFloat(5)},
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []ProductID
	}{
		{"no criteria", Criteria{}, []ProductID{"a", "b", "c", "d"}},
		{"category case-insensitive", Criteria{Categories: []string{"ELECTRONICS"}}, []ProductID{"a", "c"}},
		{"category OR", Criteria{Categories: []string{"kitchen", "phones"}}, []ProductID{"a", "b"}},
		{"literal parenthesis", Criteria{Categories: []string{"(kids)"}}, []ProductID{"d"}},
		{"min only", Criteria{MinRating: domain.NewNullFloat(4)}, []ProductID{"a", "d"}},
		{"max only inclusive", Criteria{MaxRating: domain.NewNullFloat(3)}, []ProductID{"b"}},
		{"both bounds", Criteria{MinRating: domain.NewNullFloat(3), MaxRating: domain.NewNullFloat(4.5)}, []ProductID{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []ProductID
			for _, p := range products {
				if tt.criteria.Match(p) {
					got = append(got, p.ID)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
