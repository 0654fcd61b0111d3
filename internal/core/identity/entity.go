package identity

import "time"

// Role はユーザーの役割を表します。ユーザーは必ずいずれか 1 つを持ちます。
type Role string

const (
	RoleManager        Role = "manager"
	RoleHiringManager  Role = "hiring_manager"
	RoleSupervisor     Role = "supervisor"
	RoleHumanResources Role = "human_resources"
)

// User はユーザーエンティティです。
type User struct {
	ID           string
	Email        string
	FirstName    string
	MiddleName   string
	LastName     string
	PasswordHash string
	Attempt      int
	BusinessUnit string
	Department   string
	Role         Role
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor は操作主体としてコアのユースケースへ明示的に渡される識別情報です。
type Actor struct {
	UserID       string
	Role         Role
	Department   string
	BusinessUnit string
	IsSuperuser  bool
}

// Actor はユーザーから操作主体を生成します。
func (u *User) Actor() Actor {
	return Actor{
		UserID:       u.ID,
		Role:         u.Role,
		Department:   u.Department,
		BusinessUnit: u.BusinessUnit,
		IsSuperuser:  u.IsSuperuser,
	}
}

// FullName は表示用の氏名を返します。
func (u *User) FullName() string {
	if u.MiddleName == "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName + " " + u.MiddleName + " " + u.LastName
}

// IsLocked はログイン失敗回数がしきい値に達しているかを返します。
func (u *User) IsLocked(maxAttempts int) bool {
	return u.Attempt >= maxAttempts
}

// IsValidRole は定義済みの役割かどうかを返します。
func IsValidRole(role Role) bool {
	switch role {
	case RoleManager, RoleHiringManager, RoleSupervisor, RoleHumanResources:
		return true
	default:
		return false
	}
}
