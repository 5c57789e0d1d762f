package snapshot

// Record defines a public type used by aajourney APIs.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	JourneyID       string
	Step            uint8
	Epoch           uint64
	ConsentHandleID string

	Initialized   bool
	Connected     bool
	Authenticated bool
	UserID        string

	LoginOtpRef   string
	LinkingOtpRef string

	AvailableFIPs []FIP
	SelectedFIP   *FIP
	FipDetails    *Details

	Discovered []Account
	ToLink     []Account
	Linked     []LinkedAccount

	Consent         *Consent
	ConsentLinkRefs []string

	SavedAt int64
}

// FIP mirrors the catalog entry stored for resume.
type FIP struct {
	ID      string
	Name    string
	Enabled bool
	FITypes []string
}

// RequiredIdentifier is one category+type pair a FIP demands for discovery.
type RequiredIdentifier struct {
	Category string
	Type     string
}

// FITypeIdentifiers groups required identifiers per FI type.
type FITypeIdentifiers struct {
	FIType      string
	Identifiers []RequiredIdentifier
}

// Details mirrors the FIP discovery requirements stored for resume.
type Details struct {
	FipID           string
	FipName         string
	TypeIdentifiers []FITypeIdentifiers
}

// Account mirrors one discovered account.
type Account struct {
	AccountRefNumber string
	MaskedAccNumber  string
	AccType          string
	FIType           string
}

// LinkedAccount mirrors one linked account.
type LinkedAccount struct {
	LinkRefNumber    string
	AccountRefNumber string
	MaskedAccNumber  string
	FipID            string
	FipName          string
	AccType          string
	FIType           string
}

// Consent mirrors the pending consent request. Date fields are Unix seconds.
type Consent struct {
	Handle              string
	Purpose             string
	PurposeCode         string
	DisplayDescriptions []string
	DataFrom            int64
	DataTo              int64
	ValidFrom           int64
	ValidTo             int64
	DataLifeUnit        string
	DataLifeValue       int32
	FrequencyUnit       string
	FrequencyValue      int32
	FITypes             []string
}
