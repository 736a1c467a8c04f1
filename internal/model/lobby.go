package model

// LobbyStatus follows the wire encoding the clients already speak:
// 0/1 = open for joining, 2 = started (prompts issued), 3 = closed.
type LobbyStatus int

const (
	LobbyOpen    LobbyStatus = 0
	LobbyStarted LobbyStatus = 2
	LobbyClosed  LobbyStatus = 3
)

// MembershipLevel governs participant admission policy for a lobby.
type MembershipLevel string

const (
	MembershipStandard MembershipLevel = "standard"
	MembershipPro      MembershipLevel = "pro"
)

// Participant is one joined member of a lobby. UserID is an opaque
// caller-supplied identifier, unique within a lobby by caller discipline.
type Participant struct {
	Name      string `json:"name" bson:"name"`
	UserID    string `json:"userid" bson:"userid"`
	Responses []any  `json:"responses" bson:"responses"`
}

// Lobby is the live session document, keyed by join code. Join codes are
// unique among currently-active lobbies only, not globally over time.
type Lobby struct {
	JoinCode        int             `json:"joincode" bson:"joincode"`
	HostID          string          `json:"hostid,omitempty" bson:"hostid,omitempty"`
	Group           string          `json:"group,omitempty" bson:"group,omitempty"`
	MembershipLevel MembershipLevel `json:"lobbyMembershipLevel,omitempty" bson:"lobbyMembershipLevel,omitempty"`
	Status          LobbyStatus     `json:"status" bson:"status"`
	Participants    []Participant   `json:"participants" bson:"participants"`
	Prompts         []any           `json:"prompts" bson:"prompts"`
	StartTime       int64           `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime         int64           `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Duration        int64           `json:"duration,omitempty" bson:"duration,omitempty"`
}

// LobbyInit carries the host-supplied fields of a new lobby.
type LobbyInit struct {
	HostID          string          `json:"hostid"`
	Group           string          `json:"group"`
	MembershipLevel MembershipLevel `json:"lobbyMembershipLevel"`
}

// JoinResult is the admission outcome returned to a joining participant.
type JoinResult struct {
	Joined  bool   `json:"joined"`
	Message string `json:"message"`
}

// JoinGate is the narrow projection read during join admission.
type JoinGate struct {
	Status          LobbyStatus     `bson:"status"`
	MembershipLevel MembershipLevel `bson:"lobbyMembershipLevel"`
	Participants    []Participant   `bson:"participants"`
}

// PromptGate is the projection read before a prompt submission; StartTime
// zero means the lobby has not started yet.
type PromptGate struct {
	Status    LobbyStatus `bson:"status"`
	StartTime int64       `bson:"startTime"`
}

// HostSnapshot is the host observer's view of a lobby on each poll tick.
type HostSnapshot struct {
	Participants []Participant `json:"participants" bson:"participants"`
	Prompts      []any         `json:"prompts" bson:"prompts"`
}

// ParticipantSnapshot is the participant observer's view on each poll tick.
type ParticipantSnapshot struct {
	Status  LobbyStatus `json:"status" bson:"status"`
	Prompts []any       `json:"prompts" bson:"prompts"`
}
