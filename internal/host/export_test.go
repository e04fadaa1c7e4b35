package host

var (
	PlacesURLHash = placesURLHash
	PlacesRevHost = placesRevHost
)
