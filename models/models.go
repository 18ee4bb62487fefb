package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Check-in methods
const (
	CheckInMethodQR     = "qr"
	CheckInMethodManual = "manual"
)

// Points transaction sources
const (
	SourceAttendance = "attendance"
	SourceAdminAward = "admin_award"
	SourcePenalty    = "penalty"
	SourceEvent      = "event"
	SourceRedemption = "redemption"
	SourceReport     = "report"
)

// User model; students carry a TutorID pointing at their tutor's user row
type User struct {
	BaseModel
	Username             string     `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password             string     `json:"-" gorm:"size:255;not null"`
	Email                string     `json:"email" gorm:"size:255;uniqueIndex"`
	Phone                string     `json:"phone" gorm:"size:20"`
	LineID               string     `json:"line_id" gorm:"size:100"`
	Role                 string     `json:"role" gorm:"size:50;not null;default:'student';type:enum('admin','tutor','student')"` // admin, tutor, student
	Status               string     `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"`
	Avatar               string     `json:"avatar" gorm:"size:500"`
	FirstName            string     `json:"first_name" gorm:"size:100"`
	LastName             string     `json:"last_name" gorm:"size:100"`
	Nickname             string     `json:"nickname" gorm:"size:100"`
	TutorID              *uint      `json:"tutor_id" gorm:"index"`
	PasswordResetToken   string     `json:"-" gorm:"size:255"`
	PasswordResetExpires *time.Time `json:"-"`
	LineLinkCode         string     `json:"-" gorm:"size:16;index"`

	// Relationships
	Tutor *User `json:"tutor,omitempty" gorm:"foreignKey:TutorID"`
}

// AttendanceSession is a scheduled attendance-taking window identified by a QR token
type AttendanceSession struct {
	BaseModel
	Title           string     `json:"title" gorm:"size:255;not null"`
	Description     string     `json:"description" gorm:"type:text"`
	SessionDate     time.Time  `json:"session_date" gorm:"not null"`
	QRCodeToken     string     `json:"qr_code_token" gorm:"size:64;uniqueIndex"`
	QRCodeExpiresAt *time.Time `json:"qr_code_expires_at"`
	CreatedByID     uint       `json:"created_by_id" gorm:"not null"`

	// Relationships
	CreatedBy   User               `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	Attendances []AttendanceRecord `json:"attendances,omitempty" gorm:"foreignKey:SessionID"`
}

// AttendanceRecord marks one student present at one session.
// The composite unique index is the storage-level guarantee that concurrent
// check-ins for the same pair produce exactly one winner.
type AttendanceRecord struct {
	BaseModel
	SessionID     uint      `json:"session_id" gorm:"not null;uniqueIndex:idx_session_student"`
	StudentID     uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_session_student"`
	CheckInTime   time.Time `json:"check_in_time" gorm:"not null"`
	CheckInMethod string    `json:"check_in_method" gorm:"size:20;not null;type:enum('qr','manual')"` // qr, manual

	// Relationships
	Session AttendanceSession `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	Student User              `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// PointsTransaction is one row of the append-only ledger. A student's balance
// is always SUM(amount) over their rows, never stored separately.
type PointsTransaction struct {
	BaseModel
	StudentID        uint   `json:"student_id" gorm:"not null;index"`
	Amount           int    `json:"amount" gorm:"not null"`
	Reason           string `json:"reason" gorm:"size:255"`
	Source           string `json:"source" gorm:"size:50;not null;index;type:enum('attendance','admin_award','penalty','event','redemption','report')"`
	RelatedSessionID *uint  `json:"related_session_id" gorm:"index"`
	CreatedByID      *uint  `json:"created_by_id"`

	// Relationships
	Student User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// PointReason is a preset reason tutors pick from when awarding or deducting points
type PointReason struct {
	BaseModel
	Name     string `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Amount   int    `json:"amount" gorm:"not null"`
	Category string `json:"category" gorm:"size:50;not null;default:'award';type:enum('award','penalty')"` // award, penalty
	Active   bool   `json:"active" gorm:"default:true"`
}

// StoreItem is a redeemable reward in the points store
type StoreItem struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	Price       int    `json:"price" gorm:"not null"`
	Stock       int    `json:"stock" gorm:"not null;default:0"`
	ImageURL    string `json:"image_url" gorm:"size:500"`
	Active      bool   `json:"active" gorm:"default:true"`
}

// Redemption records a student spending points on a store item
type Redemption struct {
	BaseModel
	StudentID   uint   `json:"student_id" gorm:"not null;index"`
	StoreItemID uint   `json:"store_item_id" gorm:"not null"`
	Quantity    int    `json:"quantity" gorm:"not null;default:1"`
	TotalPrice  int    `json:"total_price" gorm:"not null"`
	Status      string `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','fulfilled','cancelled')"` // pending, fulfilled, cancelled

	// Relationships
	Student   User      `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	StoreItem StoreItem `json:"store_item,omitempty" gorm:"foreignKey:StoreItemID"`
}

// Event is a one-off activity students join for a fixed points award
type Event struct {
	BaseModel
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	StartsAt    time.Time `json:"starts_at" gorm:"not null"`
	EndsAt      time.Time `json:"ends_at" gorm:"not null"`
	AwardPoints int       `json:"award_points" gorm:"not null"`
	CreatedByID uint      `json:"created_by_id" gorm:"not null"`

	// Relationships
	CreatedBy      User                 `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	Participations []EventParticipation `json:"participations,omitempty" gorm:"foreignKey:EventID"`
}

// EventParticipation pairs a student with an event, once
type EventParticipation struct {
	BaseModel
	EventID   uint `json:"event_id" gorm:"not null;uniqueIndex:idx_event_student"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_event_student"`

	// Relationships
	Event   Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Student User  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// WeeklyReport is a student's weekly activity report, scored by a tutor
type WeeklyReport struct {
	BaseModel
	StudentID    uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_student_week"`
	WeekStart    time.Time  `json:"week_start" gorm:"not null;uniqueIndex:idx_student_week"`
	Content      string     `json:"content" gorm:"type:text;not null"`
	Status       string     `json:"status" gorm:"size:50;not null;default:'submitted';type:enum('submitted','reviewed')"` // submitted, reviewed
	Score        int        `json:"score"`
	ReviewedByID *uint      `json:"reviewed_by_id"`
	ReviewedAt   *time.Time `json:"reviewed_at"`

	// Relationships
	Student    User  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	ReviewedBy *User `json:"reviewed_by,omitempty" gorm:"foreignKey:ReviewedByID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID  uint       `json:"user_id" gorm:"not null"`
	Title   string     `json:"title" gorm:"size:255;not null"`
	Message string     `json:"message" gorm:"type:text;not null"`
	Type    string     `json:"type" gorm:"size:50;not null;type:enum('info','warning','error','success')"` // info, warning, error, success
	Read    bool       `json:"read" gorm:"default:false"`
	ReadAt  *time.Time `json:"read_at"`
	// Channels holds the delivery channels as a JSON array, e.g. ["normal","line"]
	Channels JSON `json:"channels" gorm:"type:json"`
	Data     JSON `json:"data,omitempty" gorm:"type:json"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
