package models

// Tier represents the relevance tier of a piece of information.
// Tiers are ranked farmer > country > global for consumption priority.
type Tier string

const (
	TierFarmer  Tier = "FARMER"
	TierCountry Tier = "COUNTRY"
	TierGlobal  Tier = "GLOBAL"
)

// AllTiers returns every tier in priority order (farmer first, global last).
func AllTiers() []Tier {
	return []Tier{TierFarmer, TierCountry, TierGlobal}
}

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFarmer, TierCountry, TierGlobal:
		return true
	}
	return false
}

// Label returns the tier name used in result metadata and audit entries.
func (t Tier) Label() string {
	switch t {
	case TierFarmer:
		return "farmer_specific"
	case TierCountry:
		return "country_specific"
	case TierGlobal:
		return "global"
	}
	return "unknown"
}

// SourceKind categorizes the backend behind an information source
type SourceKind string

const (
	SourceKindDatabase      SourceKind = "database"
	SourceKindKnowledgeBase SourceKind = "knowledge_base"
	SourceKindExternal      SourceKind = "external"
	SourceKindCache         SourceKind = "cache"
)

// Capabilities holds the three independent per-tier authorization flags
// of a source. The flat three-boolean model is deliberate: the domain has
// exactly three fixed tiers.
type Capabilities struct {
	FarmerData  bool `json:"farmer_data"`
	CountryData bool `json:"country_data"`
	GlobalData  bool `json:"global_data"`
}

// Allows reports whether the capability flag for the given tier is set.
func (c Capabilities) Allows(t Tier) bool {
	switch t {
	case TierFarmer:
		return c.FarmerData
	case TierCountry:
		return c.CountryData
	case TierGlobal:
		return c.GlobalData
	}
	return false
}

// InformationSource describes a registered information source and its
// access capabilities. Immutable once registered.
type InformationSource struct {
	ID           string            `json:"source_id"`
	Name         string            `json:"source_name"`
	Kind         SourceKind        `json:"source_type"`
	Capabilities Capabilities      `json:"capabilities"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SourceCapabilityReport is the diagnostics view of a registered source,
// returned by the registry for audit purposes.
type SourceCapabilityReport struct {
	FarmerData  bool       `json:"farmer_data"`
	CountryData bool       `json:"country_data"`
	GlobalData  bool       `json:"global_data"`
	Kind        SourceKind `json:"source_type"`
}

// LocalizationContext carries the caller's identity and locale for one
// query. It is supplied per request and never persisted by the core.
type LocalizationContext struct {
	WhatsAppNumber    string   `json:"whatsapp_number"`
	CountryCode       string   `json:"country_code"`
	CountryName       string   `json:"country_name"`
	Languages         []string `json:"languages"`
	FarmerID          *int64   `json:"farmer_id,omitempty"`
	PreferredLanguage string   `json:"preferred_language,omitempty"`
	Timezone          string   `json:"timezone,omitempty"`
	AgriculturalZones []string `json:"agricultural_zones,omitempty"`
}

// InformationItem is one piece of retrieved information tagged with its
// relevance tier. The tier is set by the producing source and re-validated
// against that source's capabilities before it enters a result.
type InformationItem struct {
	Content     string         `json:"content"`
	Tier        Tier           `json:"relevance"`
	FarmerID    *int64         `json:"farmer_id,omitempty"`
	CountryCode string         `json:"country_code,omitempty"`
	Language    string         `json:"language,omitempty"`
	SourceKind  SourceKind     `json:"source_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// DefaultMaxItemsPerLevel is the per-tier item cap applied when a query
// does not set one.
const DefaultMaxItemsPerLevel = 5

// InformationQuery is a request for tiered information retrieval.
type InformationQuery struct {
	Text             string               `json:"query_text"`
	Context          *LocalizationContext `json:"context"`
	RequiredTiers    []Tier               `json:"required_relevance_levels"`
	MaxItemsPerLevel int                  `json:"max_items_per_level"`
	IncludeMetadata  bool                 `json:"include_metadata"`
}

// NewInformationQuery creates a query with the default tier set (all
// three) and the default per-tier cap.
func NewInformationQuery(text string, lctx *LocalizationContext) *InformationQuery {
	return &InformationQuery{
		Text:             text,
		Context:          lctx,
		RequiredTiers:    AllTiers(),
		MaxItemsPerLevel: DefaultMaxItemsPerLevel,
		IncludeMetadata:  true,
	}
}

// ResultMetadata is stamped onto every assembled result.
type ResultMetadata struct {
	QueryTimestamp string   `json:"query_timestamp"` // ISO-8601 UTC
	SourcesUsed    []string `json:"sources_used"`    // tier labels with >=1 item
	TotalItems     int      `json:"total_items"`
	ContextHash    string   `json:"context_hash"` // 16 hex chars, log correlation only
}

// InformationResult is the privacy-validated outcome of one query. The
// three tier lists are kept separate; priority order for consumption is
// farmer, then country, then global.
type InformationResult struct {
	Query        *InformationQuery `json:"-"`
	FarmerItems  []InformationItem `json:"farmer_items"`
	CountryItems []InformationItem `json:"country_items"`
	GlobalItems  []InformationItem `json:"global_items"`
	Metadata     ResultMetadata    `json:"metadata"`
}

// AllItemsByPriority returns every item in tier priority order.
func (r *InformationResult) AllItemsByPriority() []InformationItem {
	items := make([]InformationItem, 0, len(r.FarmerItems)+len(r.CountryItems)+len(r.GlobalItems))
	items = append(items, r.FarmerItems...)
	items = append(items, r.CountryItems...)
	items = append(items, r.GlobalItems...)
	return items
}

// itemSummary is the compact per-item shape used by Serialize.
type itemSummary struct {
	Content string     `json:"content"`
	Source  SourceKind `json:"source"`
}

// serializedResult is the wire shape consumed by the request handler.
type serializedResult struct {
	Query       string         `json:"query"`
	FarmerID    *int64         `json:"farmer_id,omitempty"`
	CountryCode string         `json:"country_code,omitempty"`
	Items       map[string]any `json:"items"`
	Metadata    ResultMetadata `json:"metadata"`
}

// Serialize converts the result into the nested map shape expected by
// higher-level request handlers.
func (r *InformationResult) Serialize() any {
	summarize := func(items []InformationItem) []itemSummary {
		out := make([]itemSummary, 0, len(items))
		for _, item := range items {
			out = append(out, itemSummary{Content: item.Content, Source: item.SourceKind})
		}
		return out
	}

	s := serializedResult{
		Items: map[string]any{
			"farmer_specific":  summarize(r.FarmerItems),
			"country_specific": summarize(r.CountryItems),
			"global":           summarize(r.GlobalItems),
		},
		Metadata: r.Metadata,
	}
	if r.Query != nil {
		s.Query = r.Query.Text
		if r.Query.Context != nil {
			s.FarmerID = r.Query.Context.FarmerID
			s.CountryCode = r.Query.Context.CountryCode
		}
	}
	return s
}
