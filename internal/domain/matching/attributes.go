package matching

import (
	"encoding/json"
	"strings"
)

// Species define las especies soportadas por el detector.
// @Enum dog, cat
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

// AgeBucket es la edad estimada en buckets ordinales.
// @Enum young, adult, senior
type AgeBucket string

const (
	AgeYoung  AgeBucket = "young"
	AgeAdult  AgeBucket = "adult"
	AgeSenior AgeBucket = "senior"
)

// SizeBucket es el tamaño estimado en buckets ordinales.
// @Enum small, medium, large
type SizeBucket string

const (
	SizeSmall  SizeBucket = "small"
	SizeMedium SizeBucket = "medium"
	SizeLarge  SizeBucket = "large"
)

// CanonicalColors son las 11 etiquetas de color que produce el clasificador.
var CanonicalColors = []string{
	"black", "white", "gray", "brown", "golden", "cream",
	"orange", "tabby", "calico", "spotted", "bicolor",
}

// BreedRef es una raza detectada con su confianza.
type BreedRef struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Attributes es el resultado estructurado de la detección.
// Campos opcionales explícitos en lugar de un map abierto;
// claves desconocidas del detector se conservan opacas en Extra.
type Attributes struct {
	Species Species    `json:"species"`
	Breed   *BreedRef  `json:"breed,omitempty"`
	Colors  []string   `json:"colors,omitempty"`
	Age     AgeBucket  `json:"estimated_age,omitempty"`
	Size    SizeBucket `json:"estimated_size,omitempty"`

	Extra map[string]json.RawMessage `json:"extra,omitempty"`
}

// breedFamilies agrupa razas por familia para dar crédito parcial
// cuando los nombres no coinciden exactamente (sinónimos RU/EN incluidos).
var breedFamilies = map[string]string{
	// gatos
	"persian":           "longhair",
	"maine coon":        "longhair",
	"ragdoll":           "longhair",
	"british shorthair": "shorthair",
	"russian blue":      "shorthair",
	"abyssinian":        "shorthair",
	"scottish fold":     "shorthair",
	"siamese":           "oriental",
	"bengal":            "oriental",
	"sphynx":            "hairless",
	// perros
	"labrador retriever": "retriever",
	"golden retriever":   "retriever",
	"german shepherd":    "shepherd",
	"siberian husky":     "spitz",
	"bulldog":            "molosser",
	"rottweiler":         "molosser",
	"beagle":             "hound",
	"dachshund":          "hound",
	"poodle":             "companion",
	"shih tzu":           "companion",
}

// breedSynonyms normaliza nombres alternos a la forma canónica de la tabla.
var breedSynonyms = map[string]string{
	"labrador":   "labrador retriever",
	"golden":     "golden retriever",
	"alsatian":   "german shepherd",
	"husky":      "siberian husky",
	"персидская": "persian",
	"сиамская":   "siamese",
	"мейн-кун":   "maine coon",
	"сфинкс":     "sphynx",
	"лабрадор":   "labrador retriever",
	"овчарка":    "german shepherd",
	"хаски":      "siberian husky",
	"такса":      "dachshund",
	"пудель":     "poodle",
}

func normalizeBreed(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := breedSynonyms[n]; ok {
		return canon
	}
	return n
}

// BreedFamily devuelve la familia de una raza, o "" si no está en la tabla.
func BreedFamily(name string) string {
	return breedFamilies[normalizeBreed(name)]
}

// SameBreed compara razas vía normalización de sinónimos.
func SameBreed(a, b string) bool {
	na, nb := normalizeBreed(a), normalizeBreed(b)
	return na != "" && na == nb
}

var ageOrdinal = map[AgeBucket]int{AgeYoung: 0, AgeAdult: 1, AgeSenior: 2}
var sizeOrdinal = map[SizeBucket]int{SizeSmall: 0, SizeMedium: 1, SizeLarge: 2}

// ordinalScore devuelve 1 - |diff| / maxDiff para buckets ordinales de 3 niveles.
func ordinalScore(a, b int) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return 1.0 - float64(d)/2.0
}
