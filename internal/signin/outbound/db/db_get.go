package db

import (
	"context"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
)

const getAccountByEmail = `
SELECT id, email, COALESCE(phone, ''), full_name, role, status
FROM signin_accounts
WHERE deleted_at IS NULL AND lower(email) = lower($1)
`

const getAccountByPhone = `
SELECT id, email, COALESCE(phone, ''), full_name, role, status
FROM signin_accounts
WHERE deleted_at IS NULL AND phone = $1
`

// GetAccountByIdentity resolves the directory account bound to an identity.
// Email identities match case-insensitively; phone identities match the
// stored E.164 value exactly.
func (s *DB) GetAccountByIdentity(ctx context.Context, identity string, channel entity.Channel) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByIdentity")
	defer func() { s.endSpan(span, err) }()

	query := getAccountByEmail
	if channel == entity.ChannelWhatsApp {
		query = getAccountByPhone
	}

	var account entity.Account
	err = s.conn.QueryRow(ctx, query, identity).Scan(
		&account.ID,
		&account.Email,
		&account.Phone,
		&account.FullName,
		&account.Role,
		&account.Status,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &account, nil
}
