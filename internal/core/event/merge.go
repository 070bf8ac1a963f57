package event

import "time"

// Patch is a partial Event as returned by the Event Service.
// A nil field was not supplied by the response and must not touch local state.
type Patch struct {
	ID            *string    `json:"_id,omitempty"`
	AltID         *string    `json:"id,omitempty"`
	EventName     *string    `json:"eventName,omitempty"`
	EventDate     *time.Time `json:"eventDate,omitempty"`
	Location      *string    `json:"location,omitempty"`
	CustomerName  *string    `json:"customerName,omitempty"`
	CustomerEmail *string    `json:"customerEmail,omitempty"`
	CustomerPhone *string    `json:"customerPhone,omitempty"`
	Status        *Status    `json:"status,omitempty"`
	CheckIn       *CheckIn   `json:"checkIn,omitempty"`
	StartOTP      *OTP       `json:"startOTP,omitempty"`
	ClosingOTP    *OTP       `json:"closingOTP,omitempty"`
	EventSetup    *Setup     `json:"eventSetup,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// Identity returns the event id carried by the patch, if any.
func (p Patch) Identity() string {
	if p.ID != nil && *p.ID != "" {
		return *p.ID
	}
	if p.AltID != nil {
		return *p.AltID
	}
	return ""
}

// Merge overlays the fields supplied by patch onto prev and returns the new
// local Event. Overlay is shallow: a supplied top-level field replaces the
// previous value wholesale, an absent one is left untouched. prev is not
// modified and the result shares no memory with either argument.
func Merge(prev Event, p Patch) Event {
	next := prev.Clone()

	if id := p.Identity(); id != "" {
		next.ID = id
	}
	if p.EventName != nil {
		next.EventName = *p.EventName
	}
	if p.EventDate != nil {
		next.EventDate = cloneTime(p.EventDate)
	}
	if p.Location != nil {
		next.Location = *p.Location
	}
	if p.CustomerName != nil {
		next.CustomerName = *p.CustomerName
	}
	if p.CustomerEmail != nil {
		next.CustomerEmail = *p.CustomerEmail
	}
	if p.CustomerPhone != nil {
		next.CustomerPhone = *p.CustomerPhone
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.CheckIn != nil {
		next.CheckIn = p.CheckIn.clone()
	}
	if p.StartOTP != nil {
		next.StartOTP = p.StartOTP.clone()
	}
	if p.ClosingOTP != nil {
		next.ClosingOTP = p.ClosingOTP.clone()
	}
	if p.EventSetup != nil {
		next.EventSetup = p.EventSetup.clone()
	}
	if p.CreatedAt != nil {
		next.CreatedAt = cloneTime(p.CreatedAt)
	}
	if p.UpdatedAt != nil {
		next.UpdatedAt = cloneTime(p.UpdatedAt)
	}

	return next
}

// FromPatch builds an Event from a full response (a merge into the zero Event).
func FromPatch(p Patch) Event {
	return Merge(Event{}, p)
}

// ToPatch converts a full Event into a Patch supplying every field.
func ToPatch(e Event) Patch {
	c := e.Clone()
	return Patch{
		ID:            &c.ID,
		EventName:     &c.EventName,
		EventDate:     c.EventDate,
		Location:      &c.Location,
		CustomerName:  &c.CustomerName,
		CustomerEmail: &c.CustomerEmail,
		CustomerPhone: &c.CustomerPhone,
		Status:        &c.Status,
		CheckIn:       &c.CheckIn,
		StartOTP:      &c.StartOTP,
		ClosingOTP:    &c.ClosingOTP,
		EventSetup:    &c.EventSetup,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
