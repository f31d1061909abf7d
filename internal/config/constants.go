package config

// FailureCode is the process exit status reserved to mean "an exception
// occurred inside the host script". It is passed to the host via
// --python-exit-code and checked against the subprocess exit code.
const FailureCode = 1

// Delimiter markers printed around host output. They are plain sentinels,
// never escaped; serialized values are base64 so they cannot collide.
const (
	BeginLine      = "==========HostBridgeBegin=========="
	EndLine        = "==========HostBridgeEnd=========="
	ErrorBeginLine = "==========HostBridgeErrorBegin=========="
	ErrorEndLine   = "==========HostBridgeErrorEnd=========="
)

// Environment variables recognized by the bridge.
const (
	// HostEnv overrides the host binary path. A single symmetric pair of
	// surrounding quotes is stripped from its value.
	HostEnv = "HOSTBRIDGE_HOST"

	// InsideEnv is set by the launcher in the host subprocess environment.
	// Its presence is what Detect uses to decide the process mode.
	InsideEnv = "HOSTBRIDGE_INSIDE"

	// ImportPathEnv receives the script's path directives inside the host,
	// joined with the OS path list separator.
	ImportPathEnv = "HOSTBRIDGE_IMPORT_PATH"
)

// DefaultHostCommand is the literal command used when neither an explicit
// path nor HostEnv is set. Resolved via the OS executable search.
const DefaultHostCommand = "blender"

// ProjectDirName is the per-project data directory (journal, caches).
const ProjectDirName = ".hostbridge"

// ConfigFileName is the project configuration file.
const ConfigFileName = "hostbridge.yaml"

// ImportOKLine is the diagnostic printed after all script modules resolve.
const ImportOKLine = "Import OK"
