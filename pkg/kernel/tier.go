package kernel

// Tier is a position in the authority order employee < manager < director < super_admin.
type Tier string

const (
	TierEmployee   Tier = "employee"
	TierManager    Tier = "manager"
	TierDirector   Tier = "director"
	TierSuperAdmin Tier = "super_admin"
)

// AdminTiers are the tiers stored on admin records.
var AdminTiers = []Tier{TierManager, TierDirector, TierSuperAdmin}

// AllTiers lists every tier from lowest to highest authority.
var AllTiers = []Tier{TierEmployee, TierManager, TierDirector, TierSuperAdmin}

var tierRank = map[Tier]int{
	TierEmployee:   1,
	TierManager:    2,
	TierDirector:   3,
	TierSuperAdmin: 4,
}

// ParseTier returns the tier for s and whether it is known.
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	_, ok := tierRank[t]
	return t, ok
}

// Rank is 0 for unknown tiers.
func (t Tier) Rank() int { return tierRank[t] }

func (t Tier) IsValid() bool { return t.Rank() > 0 }

func (t Tier) IsAdmin() bool { return t.Rank() > tierRank[TierEmployee] }

// SeniorTo reports strict seniority.
func (t Tier) SeniorTo(other Tier) bool {
	return t.IsValid() && other.IsValid() && t.Rank() > other.Rank()
}

func (t Tier) String() string { return string(t) }
