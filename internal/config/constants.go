package config

import "time"

// Application constants
const (
	AppName    = "UniStats"
	AppVersion = "1.0.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// WebSocket
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// File Paths (relative to the base directory)
	DefaultDataDir   = "data"
	DefaultOutputDir = "pictures"
	DefaultExportDir = "exports"
	DefaultLogsDir   = "logs"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Source workbooks
	WorkbookPattern = "*.xlsx"
	LockFilePrefix  = "~$"

	// DefaultFocusSource is the institution every comparison is drawn against.
	DefaultFocusSource = "old dominion u"

	// Batch chart naming
	DefaultGlobalImageName     = "Global-Comparison_{{underscore .Sheet}}.png"
	DefaultIndividualImageName = "{{.File}}_{{dash .Sheet}}.png"

	// Chart size in inches
	DefaultChartWidth  = 10.0
	DefaultChartHeight = 6.0

	// API Endpoints
	APIBasePath       = "/api/v1"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)

// Sheet names found in source workbooks.
const (
	SheetEarnedDoctorates  = "Earned Doctorates"
	SheetGraduateStudents  = "Graduate Students"
	SheetPartTimeGraduates = "Part-time Graduate Students"
	SheetFullTimeGraduates = "Full-time Graduate Students"
	SheetSource            = "Source"
	SheetPostdoctorates    = "Postdoctorates"
)

// TotalStudentsLabel replaces the first label of a merged graduate sheet.
const TotalStudentsLabel = "All students"

// Display messages for the subcategory comparison view.
const (
	MsgNoSubcategories   = "No subcategories available for this category."
	MsgSelectSubcategory = "Please select at least one subcategory to display the chart."
	MsgNoData            = "No data available for the current selection."
	MsgShowAllSources    = "Show All"
)
