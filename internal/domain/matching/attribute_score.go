package matching

import "strings"

// Pesos internos del comparador de atributos. Fijos por diseño
// (los pesos configurables son solo los de nivel superior en Weights).
const (
	breedSubWeight = 0.35
	colorSubWeight = 0.35
	ageSubWeight   = 0.15
	sizeSubWeight  = 0.15

	// Confianza mínima para que la raza detectada cuente como señal.
	minBreedConfidence = 0.3

	// Crédito parcial cuando las razas difieren pero comparten familia.
	breedFamilyCredit = 0.6
)

// AttributeBreakdown expone los sub-scores disponibles; nil = sub-componente
// sin señal en alguno de los dos lados.
type AttributeBreakdown struct {
	Breed *float64
	Color *float64
	Age   *float64
	Size  *float64
}

// CompareAttributes calcula el acuerdo [0,1] entre dos sets de atributos.
// Mismatch de especie descalifica: devuelve 0 sin evaluar el resto.
// El score final es el promedio ponderado de los sub-scores disponibles
// (pesos renormalizados sobre los componentes presentes).
func CompareAttributes(a, b Attributes) (float64, AttributeBreakdown) {
	var bd AttributeBreakdown

	if a.Species == "" || b.Species == "" || a.Species != b.Species {
		return 0, bd
	}

	var total, weightSum float64

	if s, ok := breedScore(a.Breed, b.Breed); ok {
		bd.Breed = &s
		total += breedSubWeight * s
		weightSum += breedSubWeight
	}
	if s, ok := colorScore(a.Colors, b.Colors); ok {
		bd.Color = &s
		total += colorSubWeight * s
		weightSum += colorSubWeight
	}
	if a.Age != "" && b.Age != "" {
		s := ordinalScore(ageOrdinal[a.Age], ageOrdinal[b.Age])
		bd.Age = &s
		total += ageSubWeight * s
		weightSum += ageSubWeight
	}
	if a.Size != "" && b.Size != "" {
		s := ordinalScore(sizeOrdinal[a.Size], sizeOrdinal[b.Size])
		bd.Size = &s
		total += sizeSubWeight * s
		weightSum += sizeSubWeight
	}

	if weightSum == 0 {
		// Solo especie coincidente: señal débil pero no nula.
		return 0.5, bd
	}

	return total / weightSum, bd
}

func breedScore(a, b *BreedRef) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if a.Confidence < minBreedConfidence || b.Confidence < minBreedConfidence {
		return 0, false
	}

	if SameBreed(a.Name, b.Name) {
		return 1.0, true
	}

	// Tabla de familias en lugar de igualdad de strings:
	// evita falsos negativos por nombres sinónimos (mezcla RU/EN).
	fa, fb := BreedFamily(a.Name), BreedFamily(b.Name)
	if fa != "" && fa == fb {
		return breedFamilyCredit, true
	}

	return 0, true
}

// colorScore es intersección-sobre-unión de etiquetas canónicas.
func colorScore(a, b []string) (float64, bool) {
	sa := colorSet(a)
	sb := colorSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0, false
	}

	inter := 0
	union := len(sb)
	for c := range sa {
		if _, ok := sb[c]; ok {
			inter++
		} else {
			union++
		}
	}

	return float64(inter) / float64(union), true
}

func colorSet(colors []string) map[string]struct{} {
	out := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		out[c] = struct{}{}
	}
	return out
}
