package patient

import "github.com/medrec/medrec/pkg/optional"

// Payload is an incoming create or update body. Every field is wrapped in a
// presence-aware container so partial updates can tell an absent key from an
// explicit null: absent fields are not validated and not touched.
type Payload struct {
	FirstName     optional.Field[string] `json:"first_name"`
	LastName      optional.Field[string] `json:"last_name"`
	DateOfBirth   optional.Field[string] `json:"date_of_birth"`
	Email         optional.Field[string] `json:"email"`
	PhoneNumber   optional.Field[string] `json:"phone_number"`
	AddressStreet optional.Field[string] `json:"address_street"`
	AddressCity   optional.Field[string] `json:"address_city"`
	AddressState  optional.Field[string] `json:"address_state"`
	AddressZip    optional.Field[string] `json:"address_zip"`

	CommunicationPreference *PreferencePayload `json:"communication_preference"`
}

// PreferencePayload is the sub-object for the patient's communication
// preference. Omitted flags keep their defaults on create and their current
// values on update.
type PreferencePayload struct {
	PreferredMethod            optional.Field[string] `json:"preferred_method"`
	AllowsAppointmentReminders optional.Field[bool]   `json:"allows_appointment_reminders"`
	AllowsBillingNotifications optional.Field[bool]   `json:"allows_billing_notifications"`
	AllowsMarketingUpdates     optional.Field[bool]   `json:"allows_marketing_updates"`
}

// apply copies the present sub-fields onto pref, leaving the rest untouched.
func (pp *PreferencePayload) apply(pref *CommunicationPreference) {
	if pp.PreferredMethod.Set && pp.PreferredMethod.Valid {
		pref.PreferredMethod = pp.PreferredMethod.Value
	}
	if pp.AllowsAppointmentReminders.Set {
		pref.AllowsAppointmentReminders = pp.AllowsAppointmentReminders.Valid && pp.AllowsAppointmentReminders.Value
	}
	if pp.AllowsBillingNotifications.Set {
		pref.AllowsBillingNotifications = pp.AllowsBillingNotifications.Valid && pp.AllowsBillingNotifications.Value
	}
	if pp.AllowsMarketingUpdates.Set {
		pref.AllowsMarketingUpdates = pp.AllowsMarketingUpdates.Valid && pp.AllowsMarketingUpdates.Value
	}
}
