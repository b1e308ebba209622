package model

import "time"

// User is a login credential embedded in a short URL document. Password holds
// the bcrypt hash, never the plaintext.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Flags    int64  `json:"flags"`
}

// ShortURL is a short path mapped to a destination. Path is stored lowercase
// and is unique among active documents; Uses counts every redirect attempt.
type ShortURL struct {
	ID          string    `json:"id"`
	Path        string    `json:"url"`
	Destination string    `json:"dest"`
	Description string    `json:"desc,omitempty"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Uses        int64     `json:"uses"`
	Passphrase  string    `json:"passphrase,omitempty"`
	Users       []User    `json:"users"`
	Flags       Flags     `json:"flags"`
}

// Redacted returns a copy safe to hand across the trust boundary: embedded
// user password hashes and internal user IDs are stripped.
func (u ShortURL) Redacted() ShortURL {
	out := u
	out.Users = make([]User, len(u.Users))
	for i, usr := range u.Users {
		usr.ID = ""
		usr.Password = ""
		out.Users[i] = usr
	}
	return out
}

// CreateRequest is the payload of POST /new.
type CreateRequest struct {
	Path        string             `json:"url"`
	Destination string             `json:"dest"`
	Description string             `json:"desc"`
	Passphrase  string             `json:"passphrase"`
	User        *CreateUserRequest `json:"user"`
	Frame       bool               `json:"frame"`
}

// CreateUserRequest is the optional login credential of a CreateRequest.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Flags    int64  `json:"flags"`
}
