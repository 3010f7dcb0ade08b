package club

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/user"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a club service that sends welcome mails synchronously
// so tests can inspect them.
func NewServiceMock(repo Repository, usrRepo user.Repository, mailSvc core.EmailService) ServiceInterface {
	return &serviceMock{
		service: service{
			repo:    repo,
			usrRepo: usrRepo,
			mailSvc: mailSvc,
		},
	}
}

func (svc *serviceMock) AddMember(ctx context.Context, clubID, studentID string) (user.User, error) {
	c, err := svc.repo.GetClubByID(ctx, clubID)
	if err != nil {
		return user.User{}, err
	}
	if c.MaxMembers.Valid {
		members, err := svc.Members(ctx, clubID)
		if err != nil {
			return user.User{}, err
		}
		if len(members) >= c.MaxMembers.Int {
			return user.User{}, ErrClubFull
		}
	}
	usr, err := svc.usrRepo.SetUserClub(ctx, studentID, null.StringFrom(clubID))
	if err != nil {
		return user.User{}, err
	}
	// run synchronously
	svc.sendWelcomeMail(usr, c)
	return usr, nil
}
