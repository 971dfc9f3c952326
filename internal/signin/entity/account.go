package entity

// AccountRole distinguishes the two portal populations.
type AccountRole string

const (
	// AccountRoleLandlord marks property managers.
	AccountRoleLandlord AccountRole = "landlord"
	// AccountRoleTenant marks renters.
	AccountRoleTenant AccountRole = "tenant"
)

// AccountStatus is the lifecycle state of a directory account.
type AccountStatus int16

const (
	// AccountStatusUnknown is the zero value.
	AccountStatusUnknown AccountStatus = iota
	// AccountStatusActive may sign in.
	AccountStatusActive
	// AccountStatusDisabled is blocked from signing in.
	AccountStatusDisabled
)

// Account is a directory entry that may sign in by OTP.
type Account struct {
	ID       int64
	Email    string
	Phone    string
	FullName string
	Role     AccountRole
	Status   AccountStatus
}
