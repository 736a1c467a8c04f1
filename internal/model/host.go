package model

// HostStats are the per-host cumulative counters bumped when a lobby closes.
type HostStats struct {
	LectionariesStarted int `json:"lectionariesStarted" bson:"lectionariesStarted"`
	StudentsTaught      int `json:"studentsTaught" bson:"studentsTaught"`
	PromptsSubmitted    int `json:"promptsSubmitted" bson:"promptsSubmitted"`
}

// Host is the host aggregate document in the hosts collection.
type Host struct {
	ID string `json:"id" bson:"_id,omitempty"`

	// LobbyMinutesUsed is accumulated in seconds; the field name predates
	// the unit change and is kept for document compatibility.
	LobbyMinutesUsed int64     `json:"lobbyMinutesUsed" bson:"lobbyMinutesUsed"`
	Groups           []string  `json:"groups" bson:"groups"`
	LastGroup        string    `json:"lastgroup" bson:"lastgroup"`
	Stats            HostStats `json:"stats" bson:"stats"`
}

// HostStatDelta is one closed lobby's contribution to a host's aggregates.
type HostStatDelta struct {
	SecondsUsed int64
	Started     int
	Students    int
	Prompts     int
}
