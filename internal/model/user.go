package model

// DefaultCurrency is used for display when the profile carries no currency code.
const DefaultCurrency = "INR"

// Identity is the authenticated user as remembered by the session store.
type Identity struct {
	UserID ID     `json:"user_id"`
	Email  string `json:"email"`
}

// UserProfile is descriptive user data. The ledger only uses it for display formatting.
type UserProfile struct {
	Name        string
	Email       string
	Mobile      string
	DateOfBirth string
	Currency    string
	CountryID   ID
	CurrencyID  ID
}

// CurrencyCode returns the profile currency or DefaultCurrency.
func (p UserProfile) CurrencyCode() string {
	if p.Currency == "" {
		return DefaultCurrency
	}
	return p.Currency
}

// ProfileUpdate is a partial profile update. Nil fields keep their current value.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	Mobile      *string
	DateOfBirth *string
	CountryID   *ID
	CurrencyID  *ID
}

// Apply merges the update over p.
func (u ProfileUpdate) Apply(p UserProfile) UserProfile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Mobile != nil {
		p.Mobile = *u.Mobile
	}
	if u.DateOfBirth != nil {
		p.DateOfBirth = *u.DateOfBirth
	}
	if u.CountryID != nil {
		p.CountryID = *u.CountryID
	}
	if u.CurrencyID != nil {
		p.CurrencyID = *u.CurrencyID
	}
	return p
}

// Registration is the data needed to create a user account.
type Registration struct {
	Name        string
	Email       string
	Password    string
	Mobile      string
	DateOfBirth string
	CountryID   ID
	CurrencyID  ID
}
