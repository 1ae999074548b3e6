package matching

import (
	"math"
	"testing"
)

func TestCompareAttributes_SpeciesMismatchDisqualifies(t *testing.T) {
	a := Attributes{Species: SpeciesDog, Colors: []string{"black"}}
	b := Attributes{Species: SpeciesCat, Colors: []string{"black"}}

	got, _ := CompareAttributes(a, b)
	if got != 0 {
		t.Fatalf("expected 0 for species mismatch, got %f", got)
	}
}

func TestCompareAttributes_UnknownSpeciesScoresZero(t *testing.T) {
	a := Attributes{Colors: []string{"black"}}
	b := Attributes{Species: SpeciesDog, Colors: []string{"black"}}

	got, _ := CompareAttributes(a, b)
	if got != 0 {
		t.Fatalf("expected 0 when one species is unknown, got %f", got)
	}
}

func TestCompareAttributes_SpeciesOnlyIsWeakSignal(t *testing.T) {
	a := Attributes{Species: SpeciesCat}
	b := Attributes{Species: SpeciesCat}

	got, bd := CompareAttributes(a, b)
	if got != 0.5 {
		t.Fatalf("expected 0.5 for species-only agreement, got %f", got)
	}
	if bd.Breed != nil || bd.Color != nil || bd.Age != nil || bd.Size != nil {
		t.Fatalf("expected empty breakdown, got %+v", bd)
	}
}

func TestCompareAttributes_FullAgreement(t *testing.T) {
	a := Attributes{
		Species: SpeciesDog,
		Breed:   &BreedRef{Name: "labrador retriever", Confidence: 0.9},
		Colors:  []string{"black", "white"},
		Age:     AgeAdult,
		Size:    SizeLarge,
	}
	b := Attributes{
		Species: SpeciesDog,
		Breed:   &BreedRef{Name: "labrador", Confidence: 0.8}, // sinónimo
		Colors:  []string{"white", "black"},
		Age:     AgeAdult,
		Size:    SizeLarge,
	}

	got, bd := CompareAttributes(a, b)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected 1.0 for full agreement, got %f", got)
	}
	if bd.Breed == nil || *bd.Breed != 1.0 {
		t.Fatalf("expected breed sub-score 1.0 via synonym, got %+v", bd.Breed)
	}
}

func TestCompareAttributes_BreedSynonymCrossLanguage(t *testing.T) {
	a := Attributes{Species: SpeciesCat, Breed: &BreedRef{Name: "персидская", Confidence: 0.7}}
	b := Attributes{Species: SpeciesCat, Breed: &BreedRef{Name: "persian", Confidence: 0.7}}

	_, bd := CompareAttributes(a, b)
	if bd.Breed == nil || *bd.Breed != 1.0 {
		t.Fatalf("expected breed 1.0 across languages, got %+v", bd.Breed)
	}
}

func TestCompareAttributes_BreedFamilyCredit(t *testing.T) {
	a := Attributes{Species: SpeciesDog, Breed: &BreedRef{Name: "labrador retriever", Confidence: 0.9}}
	b := Attributes{Species: SpeciesDog, Breed: &BreedRef{Name: "golden retriever", Confidence: 0.9}}

	_, bd := CompareAttributes(a, b)
	if bd.Breed == nil || *bd.Breed != breedFamilyCredit {
		t.Fatalf("expected family credit %f, got %+v", breedFamilyCredit, bd.Breed)
	}
}

func TestCompareAttributes_LowConfidenceBreedIgnored(t *testing.T) {
	a := Attributes{
		Species: SpeciesDog,
		Breed:   &BreedRef{Name: "labrador retriever", Confidence: 0.1},
		Colors:  []string{"black"},
	}
	b := Attributes{
		Species: SpeciesDog,
		Breed:   &BreedRef{Name: "poodle", Confidence: 0.9},
		Colors:  []string{"black"},
	}

	got, bd := CompareAttributes(a, b)
	if bd.Breed != nil {
		t.Fatalf("expected breed excluded below confidence threshold, got %+v", bd.Breed)
	}
	// Solo colors disponible: score = color IoU = 1.0
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected 1.0 from colors alone, got %f", got)
	}
}

func TestCompareAttributes_ColorOverlap(t *testing.T) {
	a := Attributes{Species: SpeciesCat, Colors: []string{"black", "white"}}
	b := Attributes{Species: SpeciesCat, Colors: []string{"black", "gray"}}

	got, bd := CompareAttributes(a, b)
	// IoU = 1/3
	if bd.Color == nil || math.Abs(*bd.Color-1.0/3.0) > 1e-9 {
		t.Fatalf("expected color IoU 1/3, got %+v", bd.Color)
	}
	if math.Abs(got-1.0/3.0) > 1e-9 {
		t.Fatalf("expected overall 1/3 with only colors, got %f", got)
	}
}

func TestCompareAttributes_AgeOrdinalDistance(t *testing.T) {
	cases := []struct {
		a, b AgeBucket
		want float64
	}{
		{AgeYoung, AgeYoung, 1.0},
		{AgeYoung, AgeAdult, 0.5},
		{AgeYoung, AgeSenior, 0.0},
		{AgeSenior, AgeAdult, 0.5},
	}

	for _, c := range cases {
		a := Attributes{Species: SpeciesDog, Age: c.a}
		b := Attributes{Species: SpeciesDog, Age: c.b}

		_, bd := CompareAttributes(a, b)
		if bd.Age == nil || math.Abs(*bd.Age-c.want) > 1e-9 {
			t.Fatalf("age %s vs %s: expected %f, got %+v", c.a, c.b, c.want, bd.Age)
		}
	}
}

func TestCompareAttributes_WeightsRenormalized(t *testing.T) {
	// colors 0.5 y age 1.0 disponibles: (0.35*0.5 + 0.15*1.0) / 0.5 = 0.65
	a := Attributes{Species: SpeciesDog, Colors: []string{"black", "white"}, Age: AgeAdult}
	b := Attributes{Species: SpeciesDog, Colors: []string{"black", "brown"}, Age: AgeAdult}

	got, _ := CompareAttributes(a, b)
	iou := 1.0 / 3.0
	want := (colorSubWeight*iou + ageSubWeight*1.0) / (colorSubWeight + ageSubWeight)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected renormalized %f, got %f", want, got)
	}
}
