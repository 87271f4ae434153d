package user

// Identity is the verified tuple carried by the auth token. The core trusts
// it once the token signature checks out; who issued it is not our concern.
type Identity struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}
