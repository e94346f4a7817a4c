package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Salary-Bot/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Salary Bot"
	AppID          = "com.github.ivancheban.salary-bot"
	KeyringService = "com.github.ivancheban.salary-bot"
	KeyringUser    = "telegram"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700
)

// -----------------------------------------------------------------------------
// CLI Flags, Environment & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion    = "version"
	FlagDebug      = "debug"
	FlagAddr       = "addr"
	FlagPolicy     = "policy"
	FlagDB         = "db"
	FlagChat       = "chat"
	FlagNotifyCron = "notify-cron"
	FlagLang       = "lang"
	FlagDates      = "dates"
	FlagSetToken   = "set-token"

	FlagDescVersion    = "Show application version and exit"
	FlagDescDebug      = "Enable debug logging to stdout"
	FlagDescAddr       = "HTTP listen address for the webhook server"
	FlagDescPolicy     = "Path to a jurisdiction policy file (YAML); empty uses the built-in policy"
	FlagDescDB         = "SQLite database path for bot state; empty keeps state in memory"
	FlagDescChat       = "Chat ID that receives the daily notification (overrides CHAT_ID)"
	FlagDescNotifyCron = "Cron expression (with seconds) for the daily notification, in the policy zone"
	FlagDescLang       = "Message language (en, uk)"
	FlagDescDates      = "Print the pay dates and holidays of the given year and exit"
	FlagDescSetToken   = "Store the bot token in the OS keyring and exit"

	EnvToken  = "TOKEN"
	EnvChatID = "CHAT_ID"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgTokenPrompt   = "Bot token: "
	MsgTokenStored   = "Token stored in keyring.\n"
	MsgDatesHeader   = "Salary dates %d:\n"
	MsgHolidayHeader = "Holidays %d:\n"
	MsgDatesLine     = "  %s\n"
	MsgHolidayLine   = "  %s  %s\n"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultAddr           = ":8080"
	DefaultLanguage       = "en"
	DefaultTimeZone       = "Europe/Kyiv"
	DefaultPayHour        = 12
	DefaultPayMinute      = 10
	DefaultMaxAdjustments = 7
	DefaultLookaheadYears = 1
	DefaultLeapYear       = 2000 // Leap year used to validate month/day pairs like Feb-29
	DefaultCooldown       = 5 * time.Second
	DefaultNotifyCron     = "0 0 10 * * *"
	DefaultFeedCron       = "0 1 0 * * *"
	DefaultChatID         = int64(-1001581609986)

	// Movable holiday offsets must keep the holiday inside Easter's calendar year.
	MinEasterOffset = -90
	MaxEasterOffset = 230

	PaymentDayLast = "last"

	// MinMonthNameLen is the shortest month name that names a single month.
	MinMonthNameLen = 3

	SalaryCommand     = "/when_salary"
	CommandMentionSep = "@"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeySalaryDay     = "salary_day"
	TKeyCalcError     = "calc_error"
	TKeyHoursLeft     = "countdown_hours"
	TKeyOneDayLeft    = "countdown_one_day"
	TKeyTwoDaysLeft   = "countdown_two_days"
	TKeyThreeDaysLeft = "countdown_three_days"
	TKeyCountdown     = "countdown_full"
	TKeyErrorReply    = "error_reply"
	TKeyFormatDate    = "format_date_long" // Go layout used for the "next salary" date
)

// SupportedLanguages defines the list of bundled message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "uk"}

const (
	LocaleDir        = "locales"
	LocaleFileFormat = "active.%s.json"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion  = "2.0"
	ICalProdid   = "-//Salary Bot//Engine//EN"
	ICalCalName  = "Salary"
	ICalMethod   = "PUBLISH"
	ICalScale    = "GREGORIAN"
	ICalDomain   = "salarybot"
	ICalSummary  = "Salary"
	ICalOverride = "Salary (manual schedule)"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropXWRTZ      = "X-WR-TIMEZONE"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	DefaultICalRefresh = 12 * time.Hour
	FormatUID          = "%s@%s"
)

// -----------------------------------------------------------------------------
// Data Formats
// -----------------------------------------------------------------------------

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
	DateTimeLayout  = "2006-01-02 15:04 MST"
	ListLayout      = "2006-01-02 Monday, 15:04"
	DefaultLongDate = "January 2, 2006"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	MaxRequestBodySize = 1 << 20

	// MaxHTTPResponseSize caps a downloaded policy file.
	MaxHTTPResponseSize = 1 << 20

	SchemeHTTP  = "http"
	SchemeHTTPS = "https"

	RouteRoot     = "/"
	RouteWebhook  = "/webhook"
	RouteNotify   = "/notify"
	RouteNext     = "/next"
	RouteCalendar = "/calendar.ics"
	RouteHealth   = "/healthz"
)

// -----------------------------------------------------------------------------
// HTTP Headers, MIME Types & Dispatch Keys
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderUserAgent       = "User-Agent"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
	// ETagBytes is the number of digest bytes kept in a feed ETag.
	ETagBytes    = 16
	FeedFileName = "salary.ics"

	TriggerDailyNotification = "daily_notification"
	SourceScheduledEvents    = "aws.events"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrUnresolvable        = "no salary date found within the lookahead window"
	ErrAdjustmentExhausted = "weekend/holiday adjustment did not converge"
	ErrPolicyRead          = "failed to read policy file"
	ErrInvalidURL          = "invalid policy URL"
	ErrProtocol            = "unsupported protocol scheme"
	ErrFetchStatus         = "server returned unexpected status"
	ErrPolicyName          = "policy name is required"
	ErrPolicyParse         = "failed to parse policy file"
	ErrPolicyInvalid       = "invalid policy"
	ErrPolicyZone          = "unknown time zone"
	ErrPolicyTime          = "invalid disbursement time"
	ErrPolicyWeekday       = "unknown weekday"
	ErrPolicyHoliday       = "invalid fixed holiday"
	ErrPolicyOffset        = "movable holiday offset out of range"
	ErrPolicyMonth         = "invalid payment month"
	ErrMonthAmbiguous      = "month name needs at least three letters"
	ErrPolicyDay           = "invalid payment day"
	ErrPolicyDate          = "invalid date"
	ErrPolicyWindow        = "override window ends before it starts"
	ErrPolicyNoPayments    = "schedule has no payments"
	ErrPolicyBound         = "max adjustments must be positive"
	ErrTokenMissing        = "bot token not provided (env TOKEN or keyring)"
	ErrTokenEmpty          = "token must not be empty"
	ErrTokenRead           = "failed to read token"
	ErrKeyring             = "keyring access failed"
	ErrChatID              = "invalid chat id"
	ErrBotInit             = "failed to initialize telegram client"
	ErrSend                = "failed to send message"
	ErrSendForbidden       = "bot was blocked or removed from chat"
	ErrSendChatNotFound    = "chat not found"
	ErrStoreOpen           = "failed to open state store"
	ErrStoreMigrate        = "failed to migrate state store"
	ErrStoreQuery          = "state store query failed"
	ErrLocaleLoad          = "failed to load locale file"
	ErrLanguage            = "unsupported language"
	ErrICalEncode          = "failed to encode iCalendar data"
	ErrSchedulerJob        = "failed to schedule job"
	ErrServerStartup       = "server startup failed"
	ErrServerShutdown      = "server shutdown failed"
	ErrAddrRequired        = "listen address is required"
	ErrWriteResp           = "failed to write response body"
	ErrLogFile             = "failed to open log file"
	ErrCacheDir            = "could not determine user cache dir"
	ErrCreateDir           = "could not create app cache dir"
	ErrAppFailed           = "application failed unexpectedly"
	ErrResolve             = "salary date resolution failed"
	ErrYearWalk            = "pay date listing did not leave year"
	ErrNotify              = "daily notification failed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing   = "Calendar initializing, please try again shortly."
	HTTPMsgOK             = "OK"
	HTTPMsgNotifySent     = "Daily notification sent successfully"
	HTTPMsgNotifySkipped  = "Notification already sent today"
	HTTPErrInvalidJSON    = "Invalid JSON"
	HTTPErrUnrecognized   = "Unrecognized request"
	HTTPErrNotifyFailed   = "Failed to send daily notification"
	HTTPErrResolveFailure = "Salary date could not be calculated"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSalaryDay     = "🎉🎊 It's Salary Day! 💰💸 Enjoy your well-earned money! 🥳🍾"
	FallbackCalcError     = "🤔 Calculation error."
	FallbackHoursLeft     = "⏰ Only %dh %dm %ds left until Salary Day! 💰 Get ready to celebrate! 🎉"
	FallbackOneDayLeft    = "⏰ Only 1 day and %dh %dm left until Salary Day! 💰 Get ready to celebrate! 🎉"
	FallbackTwoDaysLeft   = "🗓 2 days to go until Salary Day! 💼 The wait is almost over! 😊"
	FallbackThreeDaysLeft = "📅 3 days remaining until Salary Day! 💰 It's getting closer! 🙌"
	FallbackCountdown     = "⏳ Time until next salary: %dd %dh %dm %ds\n📆 Next salary: %s"
	FallbackErrorReply    = "Sorry, an error occurred."

	MsgAppStarting      = "Starting application"
	MsgAppStop          = "Application stopped gracefully"
	MsgCtxCancel        = "Context cancelled, shutting down"
	MsgPolicyLoaded     = "Policy loaded"
	MsgPolicyDownload   = "Downloading policy file"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Calendar cache updated"
	MsgFeedRefreshed    = "Salary feed refreshed"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgCommandReceived  = "Salary command received"
	MsgCommandIgnored   = "Message is not a salary command"
	MsgCooldown         = "User is in cooldown, command ignored"
	MsgReplySent        = "Reply sent"
	MsgNotifySending    = "Sending daily notification"
	MsgNotifySent       = "Daily notification sent"
	MsgNotifySkipped    = "Daily notification already sent today"
	MsgSalaryResolved   = "Salary date resolved"
	MsgUpdateReceived   = "Telegram update received"
	MsgUnknownRequest   = "Unrecognized request"
	MsgBotReady         = "Telegram client ready"
	MsgStateStore       = "State store ready"
	MsgSchedulerStart   = "Scheduler started"
	MsgSchedulerStop    = "Scheduler stopped"
	MsgJobScheduled     = "Job scheduled"
	MsgJobStarted       = "Job started"
	MsgJobFinished      = "Job finished"
	MsgJobFailed        = "Job failed"
	MsgRequestCompleted = "Request completed"
	MsgTokenFromKeyring = "Bot token loaded from keyring"
)

// -----------------------------------------------------------------------------
// Job Names
// -----------------------------------------------------------------------------

const (
	JobDailyNotification = "daily-notification"
	JobFeedRefresh       = "feed-refresh"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKeys      = "keys"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyUser      = "user_id"
	LogKeyUsername  = "username"
	LogKeyChat      = "chat_id"
	LogKeyDay       = "day"
	LogKeyLastDay   = "last_day"
	LogKeyTarget    = "target"
	LogKeyDate      = "date"
	LogKeyShift     = "shift_days"
	LogKeyOverride  = "override"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyJob       = "job"
	LogKeyRunID     = "run_id"
	LogKeyCron      = "cron"
	LogKeyZone      = "zone"
	LogKeyUpdateID  = "update_id"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyStatus    = "status_code"
	LogKeyRequestID = "request_id"
	LogKeyDuration  = "duration_ms"
	LogKeyHolidays  = "holidays"
	LogKeyPayments  = "payments"
	LogKeyOverrides = "overrides"
	LogKeyStore     = "store"
	LogKeyURL       = "url"
	LogKeyName      = "name"
	LogKeySource    = "source"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompPolicy    = "policy"
	CompMessage   = "message"
	CompBot       = "bot"
	CompTelegram  = "telegram"
	CompServer    = "server"
	CompScheduler = "scheduler"
	CompState     = "state"
	CompMain      = "main"
	CompI18n      = "i18n"
)
