package services

import (
	"context"
	"errors"

	"matchcall/app/models"
	"matchcall/app/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// profileFinder is the part of *mongo.Collection the directory uses
type profileFinder interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// ProfileDirectory is a read-only view over the profiles collection
type ProfileDirectory struct {
	profiles profileFinder
	presence Presence
}

// NewProfileDirectory creates a new profile directory. presence may be nil.
func NewProfileDirectory(profilesCollection profileFinder, presence Presence) *ProfileDirectory {
	return &ProfileDirectory{profiles: profilesCollection, presence: presence}
}

// Lookup loads a profile and fills in the derived display fields
func (d *ProfileDirectory) Lookup(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, inputError("user id is required")
	}

	var profile models.UserProfile
	err := d.profiles.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, &UpstreamError{Op: "load profile", Err: err}
	}

	decorateProfile(&profile, d.presence)
	return &profile, nil
}

func decorateProfile(profile *models.UserProfile, presence Presence) {
	seed := profile.Name
	if seed == "" {
		seed = profile.UserID
	}
	profile.AvatarColor = utils.AvatarColor(seed)
	profile.Initials = utils.Initials(profile.Name)
	if presence != nil {
		profile.Online = presence.IsOnline(profile.UserID)
	}
}
