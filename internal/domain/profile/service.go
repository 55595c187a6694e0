package profile

import (
	"context"
	"time"

	"hrportal/internal/domain/employee"
	"hrportal/internal/platform/cache"
	"hrportal/internal/requestctx"
)

const (
	ResourcePersonal     = "profile"
	ResourceEducation    = "education"
	ResourceBankAccounts = "bank-accounts"

	StaleTime = time.Minute

	MsgPersonalSaved         = "Personal information updated successfully"
	MsgPersonalFailed        = "Failed to update personal information"
	MsgEducationAdded        = "Education added successfully"
	MsgEducationUpdated      = "Education updated successfully"
	MsgEducationDeleted      = "Education deleted successfully"
	MsgEducationFailed       = "Failed to save education"
	MsgEducationDeleteFailed = "Failed to delete education"
	MsgBankAdded             = "Bank account added successfully"
	MsgBankUpdated           = "Bank account updated successfully"
	MsgBankDeleted           = "Bank account deleted successfully"
	MsgBankFailed            = "Failed to save bank account"
	MsgBankDeleteFailed      = "Failed to delete bank account"
	MsgLoadFailed            = "Could not load your profile"
)

type Service struct {
	Store *Store
	Cache *cache.Cache
	Now   func() time.Time
}

func NewService(store *Store, c *cache.Cache) *Service {
	return &Service{Store: store, Cache: c, Now: time.Now}
}

func key(ctx context.Context, resource string) cache.Key {
	return cache.NewKey(resource).Scoped(requestctx.GetSubject(ctx))
}

func (s *Service) Personal(ctx context.Context) (Personal, error) {
	return cache.Query(ctx, s.Cache, key(ctx, ResourcePersonal), StaleTime, s.Store.Personal)
}

func (s *Service) UpdatePersonal(ctx context.Context, form PersonalForm) (string, error) {
	if err := form.Validate(s.Now()).Err(); err != nil {
		return "", err
	}
	if err := s.Store.UpdatePersonal(ctx, form.Payload()); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ResourcePersonal, employee.ResourceEmployee)
	return MsgPersonalSaved, nil
}

func (s *Service) Education(ctx context.Context) ([]Education, error) {
	return cache.Query(ctx, s.Cache, key(ctx, ResourceEducation), StaleTime, s.Store.Education)
}

// FindEducation looks an entry up in the cached list.
func (s *Service) FindEducation(ctx context.Context, id string) (Education, bool, error) {
	list, err := s.Education(ctx)
	if err != nil {
		return Education{}, false, err
	}
	for _, e := range list {
		if e.ID == id {
			return e, true, nil
		}
	}
	return Education{}, false, nil
}

// SaveEducation creates when id is empty and updates otherwise.
func (s *Service) SaveEducation(ctx context.Context, id string, form EducationForm) (string, error) {
	if err := form.Validate(s.Now()).Err(); err != nil {
		return "", err
	}
	msg := MsgEducationAdded
	var err error
	if id == "" {
		err = s.Store.CreateEducation(ctx, form.Payload())
	} else {
		msg = MsgEducationUpdated
		err = s.Store.UpdateEducation(ctx, id, form.Payload())
	}
	if err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ResourceEducation)
	return msg, nil
}

func (s *Service) DeleteEducation(ctx context.Context, id string) (string, error) {
	if err := s.Store.DeleteEducation(ctx, id); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ResourceEducation)
	return MsgEducationDeleted, nil
}

func (s *Service) BankAccounts(ctx context.Context) ([]BankAccount, error) {
	return cache.Query(ctx, s.Cache, key(ctx, ResourceBankAccounts), StaleTime, s.Store.BankAccounts)
}

func (s *Service) FindBankAccount(ctx context.Context, id string) (BankAccount, bool, error) {
	list, err := s.BankAccounts(ctx)
	if err != nil {
		return BankAccount{}, false, err
	}
	for _, b := range list {
		if b.ID == id {
			return b, true, nil
		}
	}
	return BankAccount{}, false, nil
}

func (s *Service) SaveBankAccount(ctx context.Context, id string, form BankAccountForm) (string, error) {
	if err := form.Validate().Err(); err != nil {
		return "", err
	}
	msg := MsgBankAdded
	var err error
	if id == "" {
		err = s.Store.CreateBankAccount(ctx, form.Payload())
	} else {
		msg = MsgBankUpdated
		err = s.Store.UpdateBankAccount(ctx, id, form.Payload())
	}
	if err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ResourceBankAccounts)
	return msg, nil
}

func (s *Service) DeleteBankAccount(ctx context.Context, id string) (string, error) {
	if err := s.Store.DeleteBankAccount(ctx, id); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ResourceBankAccounts)
	return MsgBankDeleted, nil
}
