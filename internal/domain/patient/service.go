package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medrec/medrec/internal/platform/apperr"
)

// TxRunner runs fn atomically. Production wires db.InTx; tests can pass a
// passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo Repository
	tx   TxRunner
	now  func() time.Time
}

func NewService(repo Repository, tx TxRunner) *Service {
	return &Service{repo: repo, tx: tx, now: time.Now}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListActive(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetActive(ctx, id)
}

// Create validates the full payload and inserts the patient in one
// transaction. A communication preference is created only when the payload
// carries the sub-object; its present fields are merged over the defaults.
// A patient created without one reads back communication_preference: null.
func (s *Service) Create(ctx context.Context, pl *Payload) (*Patient, error) {
	errs := Validate(pl, false)
	if len(errs) == 0 {
		exists, err := s.repo.ActiveEmailExists(ctx, pl.Email.Value, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if exists {
			errs["email"] = "Email address already exists."
		}
	}
	if len(errs) > 0 {
		return nil, apperr.Validation(errs)
	}

	now := s.now().UTC()
	p := &Patient{
		ID:        uuid.New(),
		Email:     pl.Email.Value,
		FirstName: pl.FirstName.Value,
		LastName:  pl.LastName.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	dob, _ := ParseDate(pl.DateOfBirth.Value)
	p.DateOfBirth = &dob
	applyOptionalStrings(p, pl)

	var pref *CommunicationPreference
	if pl.CommunicationPreference != nil {
		pref = defaultPreference(p.ID)
		pl.CommunicationPreference.apply(pref)
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, p, pref)
	})
	if err != nil {
		return nil, err
	}
	p.Preference = pref
	return p, nil
}

// Update applies the present fields of a partial payload to an active patient
// and upserts the preference when the sub-object is present. The whole write
// is one transaction; updated_at refreshes on every successful update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, pl *Payload) (*Patient, error) {
	p, err := s.repo.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}

	errs := Validate(pl, true)
	if len(errs) == 0 && pl.Email.Set && pl.Email.Value != p.Email {
		exists, err := s.repo.ActiveEmailExists(ctx, pl.Email.Value, id)
		if err != nil {
			return nil, err
		}
		if exists {
			errs["email"] = "Email address already exists."
		}
	}
	if len(errs) > 0 {
		return nil, apperr.Validation(errs)
	}

	if pl.FirstName.Set {
		p.FirstName = pl.FirstName.Value
	}
	if pl.LastName.Set {
		p.LastName = pl.LastName.Value
	}
	if pl.Email.Set {
		p.Email = pl.Email.Value
	}
	if pl.DateOfBirth.Set {
		dob, _ := ParseDate(pl.DateOfBirth.Value)
		p.DateOfBirth = &dob
	}
	applyOptionalStrings(p, pl)
	p.UpdatedAt = s.now().UTC()

	var pref *CommunicationPreference
	if pl.CommunicationPreference != nil {
		pref = p.Preference
		if pref == nil {
			pref = defaultPreference(p.ID)
		}
		pl.CommunicationPreference.apply(pref)
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		if pref != nil {
			return s.repo.SavePreference(ctx, pref)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if pref != nil {
		p.Preference = pref
	}
	return p, nil
}

// Delete soft-deletes an active patient. Deleting an already deleted or
// unknown patient reports not found; the operation is terminal, there is no
// restore.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		return s.repo.SoftDelete(ctx, id, s.now().UTC())
	})
}

// applyOptionalStrings copies the present nullable contact and address fields.
// An explicit null clears the column.
func applyOptionalStrings(p *Patient, pl *Payload) {
	if pl.PhoneNumber.Set {
		p.PhoneNumber = strPtr(pl.PhoneNumber.Value, pl.PhoneNumber.Valid)
	}
	if pl.AddressStreet.Set {
		p.AddressStreet = strPtr(pl.AddressStreet.Value, pl.AddressStreet.Valid)
	}
	if pl.AddressCity.Set {
		p.AddressCity = strPtr(pl.AddressCity.Value, pl.AddressCity.Valid)
	}
	if pl.AddressState.Set {
		p.AddressState = strPtr(pl.AddressState.Value, pl.AddressState.Valid)
	}
	if pl.AddressZip.Set {
		p.AddressZip = strPtr(pl.AddressZip.Value, pl.AddressZip.Valid)
	}
}

func strPtr(v string, valid bool) *string {
	if !valid {
		return nil
	}
	return &v
}
