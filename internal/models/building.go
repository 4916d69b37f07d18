package models

// Building is a physical address with a WGS84 point location. The
// stored geometry is derived from (latitude, longitude) on write.
type Building struct {
	ID        int64   `json:"id"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
