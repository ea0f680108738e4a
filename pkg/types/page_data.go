package types

type NavbarData struct {
	IsAuthenticated bool
	IsDashboard     bool
	UserID          string
	UserEmail       string
	Organization    string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Notice string
	Error  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Steps []StepData
}

type StepData struct {
	Number      int
	Title       string
	Description string
}

type FirstAidPageData struct {
	BasePageData
	Sections []FirstAidSection
}

type FirstAidSection struct {
	Title string
	Steps []string
	Avoid []string
}

type ReportPageData struct {
	BasePageData
	Description string
	Latitude    string
	Longitude   string
	GeoMethod   string
	DraftToken  string
	HasPhoto    bool
	FieldErrors map[string]string
}

type LoginPageData struct {
	BasePageData
	Email string
}

type RegisterPageData struct {
	BasePageData
	Registration Registration
	FieldErrors  map[string]string
}

type ConfirmRegisterPageData struct {
	BasePageData
	Email string
}

type DashboardPageData struct {
	BasePageData
	Reports []DashboardReportCard
}

type DashboardReportCard struct {
	ID          string
	Description string
	ImageURL    string
	Location    string
	HasLocation bool
	Latitude    float64
	Longitude   float64
	Status      ReportStatus
	StatusLabel string
	CanDecide   bool
}
