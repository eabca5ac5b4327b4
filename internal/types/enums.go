package types

import "slices"

// Department values accepted by the employees collection.
const (
	DepartmentEngineering = "Engineering"
	DepartmentProduct     = "Product"
	DepartmentDesign      = "Design"
	DepartmentMarketing   = "Marketing"
	DepartmentSales       = "Sales"
	DepartmentHR          = "HR"
	DepartmentFinance     = "Finance"
	DepartmentOperations  = "Operations"
)

// Employment types.
const (
	EmploymentFullTime   = "Full-time"
	EmploymentPartTime   = "Part-time"
	EmploymentContract   = "Contract"
	EmploymentInternship = "Internship"
)

// Work locations.
const (
	WorkLocationOffice = "Office"
	WorkLocationRemote = "Remote"
	WorkLocationHybrid = "Hybrid"
)

// Preferred communication media.
const (
	CommunicationEmail    = "email"
	CommunicationSlack    = "slack"
	CommunicationPhone    = "phone"
	CommunicationInPerson = "in-person"
)

// Notification preferences.
const (
	NotifyEmail    = "email_notifications"
	NotifySMS      = "sms_notifications"
	NotifyPush     = "push_notifications"
	NotifyCalendar = "calendar_reminders"
)

// Departments lists every department in display order.
var Departments = []string{
	DepartmentEngineering,
	DepartmentProduct,
	DepartmentDesign,
	DepartmentMarketing,
	DepartmentSales,
	DepartmentHR,
	DepartmentFinance,
	DepartmentOperations,
}

// EmploymentTypes lists every employment type.
var EmploymentTypes = []string{EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship}

// WorkLocations lists every work location.
var WorkLocations = []string{WorkLocationOffice, WorkLocationRemote, WorkLocationHybrid}

// CommunicationMedia lists every preferred communication medium.
var CommunicationMedia = []string{CommunicationEmail, CommunicationSlack, CommunicationPhone, CommunicationInPerson}

// NotificationPreferences lists every notification preference.
var NotificationPreferences = []string{NotifyEmail, NotifySMS, NotifyPush, NotifyCalendar}

// IsOneOf reports whether value is an element of allowed.
func IsOneOf(value string, allowed []string) bool {
	return slices.Contains(allowed, value)
}
