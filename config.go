package p2p

import (
	"fmt"
	"os"
)

// Config carries the connection settings for one client. It is copied at
// construction and immutable afterwards; every call dispatched through the
// client shares it read-only.
type Config struct {
	// BaseURL is the root of the Content Services API.
	BaseURL string
	// AuthToken is sent as a bearer token on every request.
	AuthToken string
	// Debug logs every attempt (method, path, status) through the client's
	// logger. Purely observational.
	Debug bool
	// ImageServicesURL is the optional secondary service used for thumbs.
	ImageServicesURL string
	// Cache stores responses by request signature. Nil means no caching.
	Cache Cache
	// PreserveEmbeddedTags asks the service to keep embedded markup when
	// writing content items.
	PreserveEmbeddedTags bool
	// ProductAffiliateCode defaults to "chinews".
	ProductAffiliateCode string
	// SourceCode defaults to "chicagotribune".
	SourceCode string
	// WebappName defaults to "tRibbit".
	WebappName string
}

// FromEnv builds a Config from the environment:
//
//	export P2P_API_KEY=your_api_key
//	export P2P_API_URL=url_of_endpoint
//
//	# Optional
//	export P2P_API_DEBUG=1
//	export P2P_IMAGE_SERVICES_URL=url_of_image_services_endpoint
//
// Callers with settings elsewhere construct a Config directly.
func FromEnv() (Config, error) {
	url := os.Getenv("P2P_API_URL")
	key := os.Getenv("P2P_API_KEY")
	if url == "" || key == "" {
		return Config{}, fmt.Errorf("p2p: no connection settings available; set P2P_API_URL and P2P_API_KEY")
	}
	return Config{
		BaseURL:          url,
		AuthToken:        key,
		Debug:            os.Getenv("P2P_API_DEBUG") != "",
		ImageServicesURL: os.Getenv("P2P_IMAGE_SERVICES_URL"),
	}, nil
}
