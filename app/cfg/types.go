package cfg

type Cfg struct {
	// Store (persistence collaborator) configuration
	StoreURL string
	StoreKey string

	// Scraping configuration
	MaxPages      int
	MaxListings   int
	MaxPriceEUR   int
	PageDelay     int // seconds between page fetches
	UserAgent     string
	FiltersFile   string
	CacheFile     string
	SessionFile   string
	SessionMaxAge int // hours before the imobiliare session is considered stale

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
