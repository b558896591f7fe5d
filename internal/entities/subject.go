package entities

// SubjectKind identifies the class of caller making a request
type SubjectKind string

const (
	// SubjectAnonymous is a caller with no validated identity
	SubjectAnonymous SubjectKind = "anonymous"
	// SubjectUser is a human caller identified by a subject claim
	SubjectUser SubjectKind = "user"
	// SubjectService is a machine caller identified by a client id
	SubjectService SubjectKind = "service"
)

// Subject represents the authenticated principal of a policy evaluation.
//
// For users the effective privilege is the intersection of group memberships
// and the scopes granted to the calling client application. For services only
// scopes are meaningful; group-based rules never fire for them.
type Subject struct {
	Kind   SubjectKind            // anonymous, user, or service
	ID     string                 // sub claim or client id (empty for anonymous)
	Groups []string               // group memberships (users only)
	Scopes []string               // granted capability strings
	Claims map[string]interface{} // raw claims carried through for attribute rules
}

// Anonymous returns the anonymous subject.
func Anonymous() *Subject {
	return &Subject{Kind: SubjectAnonymous}
}

// IsAnonymous reports whether the subject carries no identity.
// A nil subject is treated as anonymous.
func (s *Subject) IsAnonymous() bool {
	return s == nil || s.Kind == SubjectAnonymous
}

// IsUser reports whether the subject is a human user.
func (s *Subject) IsUser() bool {
	return s != nil && s.Kind == SubjectUser
}

// IsService reports whether the subject is a service account.
func (s *Subject) IsService() bool {
	return s != nil && s.Kind == SubjectService
}

// StringClaim returns the named claim when it is a non-empty string.
func (s *Subject) StringClaim(name string) (string, bool) {
	if s == nil || s.Claims == nil {
		return "", false
	}
	v, ok := s.Claims[name].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
