package enums

type AttendanceStatus string

const (
	AttendanceStatusOnTime AttendanceStatus = "on_time"
	AttendanceStatusLate   AttendanceStatus = "late"
)
