package models

// CallState describes where an inquiry is in its monotonic lifecycle.
// Once a call is placed there is no way back to CallNotStarted.
type CallState string

const (
	CallNotStarted CallState = "not_started"
	CallInProgress CallState = "in_progress"
	CallCompleted  CallState = "completed"
)

// MovingQuery is one search submission: trip parameters plus the owning user.
// It is immutable after creation; many MovingInquiry rows reference it.
type MovingQuery struct {
	ID           int64  `json:"id"`
	LocationFrom string `json:"location_from"`
	LocationTo   string `json:"location_to"`
	CreatedAt    string `json:"created_at"` // ISO-8601
	Items        string `json:"items"`
	ItemsDetails string `json:"items_details"`
	Availability string `json:"availability"`
	UserID       string `json:"user_id"`
}

// MovingCompany is a candidate company the backend found for a query.
type MovingCompany struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	PhoneNumber      string  `json:"phone_number"`
	Address          string  `json:"address"`
	Rating           float32 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
}

// MovingInquiry is a single moving-company contact attempt tied to one query
// and one company. The backend creates it during fan-out, the client flips it
// to in-progress by placing a call, and the backend's call pipeline writes
// back price, transcript, and recording when the call completes.
type MovingInquiry struct {
	ID              int64   `json:"id"`
	MovingCompanyID int64   `json:"moving_company_id"`
	MovingQueryID   int64   `json:"moving_query_id"`
	CreatedAt       string  `json:"created_at"`
	PhoneNumber     string  `json:"phone_number"`
	Price           Price   `json:"price"`
	InProgress      bool    `json:"in_progress"`
	CallDuration    float64 `json:"call_duration"`
	Summary         string  `json:"summary"`
	Transcript      string  `json:"phone_call_transcript"`
	RecordingURL    string  `json:"recording_url"`
}

// State derives the lifecycle position from the row's fields.
func (i *MovingInquiry) State() CallState {
	switch {
	case !i.InProgress:
		return CallNotStarted
	case !i.Price.Known():
		return CallInProgress
	default:
		return CallCompleted
	}
}
