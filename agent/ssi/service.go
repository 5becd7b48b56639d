package ssi

// ServiceType is the closed set of DID document service types the custodian
// knows. Every other type string maps to ServiceUnknown.
type ServiceType int

const (
	ServiceUnknown ServiceType = iota
	ServiceLinkedDomains
	ServiceDIDCommunication
	ServiceProfile
)

// Op is a mutation of a DID document's service array.
type Op int

const (
	OpAdd Op = iota
	OpUpdate
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	}
	return "unknown"
}

// Rule tells if and how a mutation is permitted for a service type.
type Rule int

const (
	// Denied operations are not implemented for the type.
	Denied Rule = iota
	// Allowed without further constraints.
	Allowed
	// Once allows the add only if the wallet has no entry of the type yet.
	// The agent keeps one endpoint per type, so every agent backed type is
	// added once.
	Once
	// IfExists allows the update only if the entry exists in the document.
	IfExists
)

type typeInfo struct {
	name      string
	agentType string
	rules     [3]Rule // indexed by Op
}

var serviceTypes = [...]typeInfo{
	ServiceUnknown: {
		rules: [3]Rule{OpAdd: Denied, OpUpdate: Denied, OpRemove: Denied},
	},
	ServiceLinkedDomains: {
		name:      "linked_domains",
		agentType: "LinkedDomains",
		rules:     [3]Rule{OpAdd: Once, OpUpdate: IfExists, OpRemove: Denied},
	},
	ServiceDIDCommunication: {
		name:      "did-communication",
		agentType: "Endpoint",
		rules:     [3]Rule{OpAdd: Once, OpUpdate: IfExists, OpRemove: Denied},
	},
	ServiceProfile: {
		name:      "profile",
		agentType: "Profile",
		rules:     [3]Rule{OpAdd: Once, OpUpdate: Denied, OpRemove: Denied},
	},
}

// ParseServiceType maps a document type string to the ServiceType.
func ParseServiceType(s string) ServiceType {
	for i, ti := range serviceTypes {
		if ti.name != "" && ti.name == s {
			return ServiceType(i)
		}
	}
	return ServiceUnknown
}

// ServiceTypeFromAgent maps the agent's endpoint type to the ServiceType.
func ServiceTypeFromAgent(s string) ServiceType {
	for i, ti := range serviceTypes {
		if ti.agentType != "" && ti.agentType == s {
			return ServiceType(i)
		}
	}
	return ServiceUnknown
}

func (t ServiceType) info() typeInfo {
	if t < 0 || int(t) >= len(serviceTypes) {
		return serviceTypes[ServiceUnknown]
	}
	return serviceTypes[t]
}

func (t ServiceType) String() string {
	if n := t.info().name; n != "" {
		return n
	}
	return "unknown"
}

// AgentType is the endpoint type name the agent uses for the service type.
func (t ServiceType) AgentType() string {
	return t.info().agentType
}

// Known tells if the type is one of the supported service types.
func (t ServiceType) Known() bool {
	return t != ServiceUnknown && t.info().name != ""
}

// Rule returns the rule of the operation for the type.
func (t ServiceType) Rule(op Op) Rule {
	if op < OpAdd || op > OpRemove {
		return Denied
	}
	return t.info().rules[op]
}

// Permits tells if the operation is implemented at all for the type.
func (t ServiceType) Permits(op Op) bool {
	return t.Rule(op) != Denied
}
