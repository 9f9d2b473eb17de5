package geocode

import "math"

// earthRadiusMeters — средний радиус Земли (WGS-84).
const earthRadiusMeters = 6371008.8

// DistanceMeters возвращает расстояние по большому кругу между двумя
// точками в метрах (формула хаверсинуса).
//
// Точности хаверсинуса (±0.5% против геодезической) более чем достаточно:
// порог сегментации — ~1 км, ошибка GPS у телефона больше.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
