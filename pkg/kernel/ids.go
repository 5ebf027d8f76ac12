package kernel

type EmployeeID string

func NewEmployeeID(id string) EmployeeID { return EmployeeID(id) }
func (e EmployeeID) String() string      { return string(e) }
func (e EmployeeID) IsEmpty() bool       { return string(e) == "" }

type AdminID string

func NewAdminID(id string) AdminID { return AdminID(id) }
func (a AdminID) String() string   { return string(a) }
func (a AdminID) IsEmpty() bool    { return string(a) == "" }

type OrganizationID string

func NewOrganizationID(id string) OrganizationID { return OrganizationID(id) }
func (o OrganizationID) String() string          { return string(o) }
func (o OrganizationID) IsEmpty() bool           { return string(o) == "" }

type BranchID string

func NewBranchID(id string) BranchID { return BranchID(id) }
func (b BranchID) String() string    { return string(b) }
func (b BranchID) IsEmpty() bool     { return string(b) == "" }

type AreaID string

func NewAreaID(id string) AreaID { return AreaID(id) }
func (a AreaID) String() string  { return string(a) }
func (a AreaID) IsEmpty() bool   { return string(a) == "" }

type JobRoleID string

func NewJobRoleID(id string) JobRoleID { return JobRoleID(id) }
func (j JobRoleID) String() string     { return string(j) }
func (j JobRoleID) IsEmpty() bool      { return string(j) == "" }
