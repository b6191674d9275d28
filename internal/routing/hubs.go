package routing

import "github.com/jengzang/layover-backend-go/internal/models"

// DefaultHubMeta returns the builtin metadata of the supported hubs.
// Used when the metadata store is empty or unreachable.
func DefaultHubMeta() map[string]models.HubMeta {
	list := []models.HubMeta{
		{ID: "doh", Name: "Doha Hamad", Code: "DOH", Region: RegionMiddleEast, Popularity: 0.88, Friction: 0.20, LateNightStrength: 0.90, AirsideStrength: 0.92, LandsideStrength: 0.70},
		{ID: "dxb", Name: "Dubai International", Code: "DXB", Region: RegionMiddleEast, Popularity: 0.95, Friction: 0.30, LateNightStrength: 0.85, AirsideStrength: 0.85, LandsideStrength: 0.80},
		{ID: "ist", Name: "Istanbul", Code: "IST", Region: RegionEuropeEast, Popularity: 0.80, Friction: 0.45, LateNightStrength: 0.70, AirsideStrength: 0.75, LandsideStrength: 0.75},
		{ID: "sin", Name: "Singapore Changi", Code: "SIN", Region: RegionSEAsia, Popularity: 0.93, Friction: 0.10, LateNightStrength: 0.90, AirsideStrength: 0.98, LandsideStrength: 0.85},
		{ID: "bkk", Name: "Bangkok Suvarnabhumi", Code: "BKK", Region: RegionSEAsia, Popularity: 0.82, Friction: 0.40, LateNightStrength: 0.65, AirsideStrength: 0.65, LandsideStrength: 0.85},
		{ID: "hnd", Name: "Tokyo Haneda", Code: "HND", Region: RegionEastAsia, Popularity: 0.85, Friction: 0.15, LateNightStrength: 0.55, AirsideStrength: 0.80, LandsideStrength: 0.90},
		{ID: "icn", Name: "Seoul Incheon", Code: "ICN", Region: RegionEastAsia, Popularity: 0.84, Friction: 0.12, LateNightStrength: 0.75, AirsideStrength: 0.90, LandsideStrength: 0.65},
		{ID: "lhr", Name: "London Heathrow", Code: "LHR", Region: RegionEuropeWest, Popularity: 0.90, Friction: 0.55, LateNightStrength: 0.35, AirsideStrength: 0.70, LandsideStrength: 0.75},
		{ID: "ams", Name: "Amsterdam Schiphol", Code: "AMS", Region: RegionEuropeWest, Popularity: 0.80, Friction: 0.25, LateNightStrength: 0.45, AirsideStrength: 0.80, LandsideStrength: 0.85},
		{ID: "cdg", Name: "Paris Charles de Gaulle", Code: "CDG", Region: RegionEuropeWest, Popularity: 0.78, Friction: 0.50, LateNightStrength: 0.40, AirsideStrength: 0.60, LandsideStrength: 0.70},
	}
	out := make(map[string]models.HubMeta, len(list))
	for _, m := range list {
		out[m.ID] = m
	}
	return out
}
