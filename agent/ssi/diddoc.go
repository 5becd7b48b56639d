package ssi

const DIDContext = "https://www.w3.org/ns/did/v1"

// DIDDocument is the resolved view of a wallet's DID. The custodian doesn't
// persist it, the agent is the source of truth.
type DIDDocument struct {
	Context            any                  `json:"@context,omitempty"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod,omitempty"`
	Authentication     []any                `json:"authentication,omitempty"`
	AssertionMethod    []any                `json:"assertionMethod,omitempty"`
	Service            []ServiceEntry       `json:"service,omitempty"`
}

// VerificationMethod is a public key entry of the DID document.
type VerificationMethod struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Controller      string `json:"controller"`
	PublicKeyBase58 string `json:"publicKeyBase58,omitempty"`
}

// ServiceEntry is one named endpoint of the DID document.
type ServiceEntry struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// ServicePatch is the body of a service update. The id comes from the path.
type ServicePatch struct {
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// ServiceType returns the parsed type of the entry.
func (s ServiceEntry) ServiceType() ServiceType {
	return ParseServiceType(s.Type)
}

// ResolvedType returns the type of an entry of a resolved document, where the
// agent may use its own type names.
func (s ServiceEntry) ResolvedType() ServiceType {
	if t := ParseServiceType(s.Type); t.Known() {
		return t
	}
	return ServiceTypeFromAgent(s.Type)
}

// FindService returns the entry by id. Document ids may be given as relative
// fragments (#id) or full DID URLs (did#id), both match the plain id.
func (d *DIDDocument) FindService(id string) (ServiceEntry, bool) {
	for _, s := range d.Service {
		if serviceIDMatches(d.ID, s.ID, id) {
			return s, true
		}
	}
	return ServiceEntry{}, false
}

// CountType returns the number of entries of the type.
func (d *DIDDocument) CountType(t ServiceType) int {
	n := 0
	for _, s := range d.Service {
		if s.ResolvedType() == t {
			n++
		}
	}
	return n
}

func serviceIDMatches(docID, have, want string) bool {
	switch have {
	case want, "#" + want, docID + "#" + want:
		return true
	}
	return false
}
