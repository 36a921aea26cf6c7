package patient

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. It marshals as
// "YYYY-MM-DD" and scans from a Postgres DATE column.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case nil:
		d.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Preferred contact methods. The set is closed.
const (
	MethodEmail = "EMAIL"
	MethodSMS   = "SMS"
	MethodPhone = "PHONE"
)

// PreferredMethods lists the allowed contact methods in display order.
var PreferredMethods = []string{MethodEmail, MethodSMS, MethodPhone}

// Patient maps to the patients table. A patient is active while deleted_at is
// null; soft delete stamps deleted_at and is terminal.
type Patient struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	DateOfBirth   *Date      `db:"date_of_birth" json:"date_of_birth"`
	Email         string     `db:"email" json:"email"`
	PhoneNumber   *string    `db:"phone_number" json:"phone_number"`
	AddressStreet *string    `db:"address_street" json:"address_street"`
	AddressCity   *string    `db:"address_city" json:"address_city"`
	AddressState  *string    `db:"address_state" json:"address_state"`
	AddressZip    *string    `db:"address_zip" json:"address_zip"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at" json:"deleted_at"`

	// Preference is eagerly attached on reads; nil when the patient has none.
	Preference *CommunicationPreference `db:"-" json:"communication_preference"`
}

// Active reports whether the patient is visible to list/get/update.
func (p *Patient) Active() bool { return p.DeletedAt == nil }

// CommunicationPreference maps to the communication_preferences table.
// At most one exists per patient, enforced by a unique constraint on the
// foreign key. Soft-deleting the owning patient leaves it intact.
type CommunicationPreference struct {
	ID                         uuid.UUID `db:"id" json:"id"`
	PatientID                  uuid.UUID `db:"patient_id" json:"patient_id"`
	PreferredMethod            string    `db:"preferred_method" json:"preferred_method"`
	AllowsAppointmentReminders bool      `db:"allows_appointment_reminders" json:"allows_appointment_reminders"`
	AllowsBillingNotifications bool      `db:"allows_billing_notifications" json:"allows_billing_notifications"`
	AllowsMarketingUpdates     bool      `db:"allows_marketing_updates" json:"allows_marketing_updates"`
}

// defaultPreference returns a preference row with the documented defaults:
// EMAIL contact, reminders and billing on, marketing off.
func defaultPreference(patientID uuid.UUID) *CommunicationPreference {
	return &CommunicationPreference{
		ID:                         uuid.New(),
		PatientID:                  patientID,
		PreferredMethod:            MethodEmail,
		AllowsAppointmentReminders: true,
		AllowsBillingNotifications: true,
		AllowsMarketingUpdates:     false,
	}
}
