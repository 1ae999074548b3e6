package matching

import (
	"math"
	"time"
)

// Point es una coordenada geocodificada (lat/lon en grados).
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

const earthRadiusKm = 6371.0

// HaversineKm calcula distancia en km entre dos puntos.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// GeoTimeConfig parametriza los decays y la política de datos faltantes.
type GeoTimeConfig struct {
	DecayKm   float64 // falloff de distancia, default 10
	DecayDays float64 // falloff temporal, default 10

	// Score asignado cuando found_date < lost_date (ruido de carga manual).
	NegativeGapScore float64

	// IgnoreMissing: datos faltantes puntúan 1.0 en vez del neutro 0.5.
	IgnoreMissing bool
}

// DefaultGeoTime devuelve la configuración por defecto.
func DefaultGeoTime() GeoTimeConfig {
	return GeoTimeConfig{
		DecayKm:          10,
		DecayDays:        10,
		NegativeGapScore: 0.25,
	}
}

// neutralScore es la política por defecto ante datos no resolubles:
// ni premia ni castiga, y el componente queda marcado como unavailable.
const neutralScore = 0.5

// LocationScore devuelve exp(-distancia/decay) y si el componente tuvo señal.
// El retrieval ya aplicó el radio duro; acá solo decae suavemente.
func LocationScore(cfg GeoTimeConfig, a, b *Point) (score float64, available bool) {
	if a == nil || b == nil {
		if cfg.IgnoreMissing {
			return 1.0, false
		}
		return neutralScore, false
	}

	decay := cfg.DecayKm
	if decay <= 0 {
		decay = 10
	}

	return math.Exp(-HaversineKm(*a, *b) / decay), true
}

// TimeScore devuelve exp(-|días|/decay) entre lost_date y found_date.
// Se espera found >= lost; un gap negativo se clampa al score mínimo
// configurado en lugar de tratarse como error.
func TimeScore(cfg GeoTimeConfig, lost, found *time.Time) (score float64, available bool) {
	if lost == nil || found == nil || lost.IsZero() || found.IsZero() {
		if cfg.IgnoreMissing {
			return 1.0, false
		}
		return neutralScore, false
	}

	decay := cfg.DecayDays
	if decay <= 0 {
		decay = 10
	}

	days := found.Sub(*lost).Hours() / 24
	if days < 0 {
		floor := cfg.NegativeGapScore
		if floor <= 0 {
			floor = 0.25
		}
		return floor, true
	}

	return math.Exp(-days / decay), true
}
