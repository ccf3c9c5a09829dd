package models

// UserProfile is the display record of a peer, owned by the profile store
type UserProfile struct {
	UserID            string   `json:"user_id" bson:"user_id"`
	Name              string   `json:"name" bson:"name"`
	Avatar            string   `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio               string   `json:"bio,omitempty" bson:"bio,omitempty"`
	Profession        string   `json:"profession,omitempty" bson:"profession,omitempty"`
	Company           string   `json:"company,omitempty" bson:"company,omitempty"`
	School            string   `json:"school,omitempty" bson:"school,omitempty"`
	YearsOfExperience int      `json:"years_of_experience,omitempty" bson:"years_of_experience,omitempty"`
	SharedInterests   []string `json:"shared_interests,omitempty" bson:"shared_interests,omitempty"`
	ConnectionType    string   `json:"connection_type,omitempty" bson:"connection_type,omitempty"`

	// derived, never stored
	Online      bool   `json:"online" bson:"-"`
	AvatarColor string `json:"avatar_color" bson:"-"`
	Initials    string `json:"initials" bson:"-"`
}
