package model

import "context"

// Session storage keys. The durable mirror uses exactly these names.
const (
	SessionKeyToken  = "token"
	SessionKeyUserID = "userId"
	SessionKeyEmail  = "email"
	SessionKeyName   = "name"
)

// Session is the client-held record of the authenticated user.
// It is either complete (all four fields set) or empty.
type Session struct {
	Token  string
	UserID string
	Email  string
	Name   string
}

// Complete reports whether every field is populated.
func (s Session) Complete() bool {
	return s.Token != "" && s.UserID != "" && s.Email != "" && s.Name != ""
}

// Empty reports whether every field is cleared.
func (s Session) Empty() bool {
	return s == Session{}
}

// Fields returns the session as a key/value map using the storage keys.
func (s Session) Fields() map[string]string {
	return map[string]string{
		SessionKeyToken:  s.Token,
		SessionKeyUserID: s.UserID,
		SessionKeyEmail:  s.Email,
		SessionKeyName:   s.Name,
	}
}

// SessionFromFields builds a session from a storage key/value map.
// Unknown keys are ignored.
func SessionFromFields(fields map[string]string) Session {
	return Session{
		Token:  fields[SessionKeyToken],
		UserID: fields[SessionKeyUserID],
		Email:  fields[SessionKeyEmail],
		Name:   fields[SessionKeyName],
	}
}

// SessionStore mirrors the session into durable storage so a restart
// restores the logged-in state.
type SessionStore interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}

// SessionGrant is what the server returns when it issues or refreshes a
// session: a bearer token and the profile it belongs to.
type SessionGrant struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Session converts the grant into a client session record.
func (g SessionGrant) Session() Session {
	return Session{
		Token:  g.Token,
		UserID: g.User.ID,
		Email:  g.User.Email,
		Name:   g.User.Name,
	}
}
