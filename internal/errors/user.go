package errors

import "errors"

// ErrorInfo holds the user-facing message and suggested action for an error.
// Messages are written in Spanish, the language of the chat stream.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice keeps errors.Is() traversal order explicit for wrapped errors.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	{
		err: ErrFileNotFound,
		info: ErrorInfo{
			Message: "No se encontró el archivo solicitado.",
			Action:  "Selecciona un archivo existente del proyecto e inténtalo de nuevo.",
		},
	},
	{
		err: ErrQuota,
		info: ErrorInfo{
			Message: "El modelo alcanzó su cuota y la alternativa tampoco respondió.",
			Action:  "Espera unos minutos o configura otra capacidad alternativa.",
		},
	},
	{
		err: ErrGateway,
		info: ErrorInfo{
			Message: "El modelo de lenguaje devolvió un error.",
			Action:  "Revisa la configuración de la capacidad y vuelve a intentarlo.",
		},
	},
	{
		err: ErrCapabilityNotFound,
		info: ErrorInfo{
			Message: "La capacidad de modelo solicitada no está configurada.",
			Action:  "Añade la capacidad en la sección 'capabilities' de .forja/config.yaml.",
		},
	},
	{
		err: ErrExtraction,
		info: ErrorInfo{
			Message: "La respuesta del modelo no contenía un JSON válido.",
			Action:  "Se usó un resultado básico generado localmente.",
		},
	},
	{
		err: ErrValidation,
		info: ErrorInfo{
			Message: "La respuesta del modelo estaba incompleta.",
			Action:  "Se completaron los campos faltantes con valores por defecto.",
		},
	},
	{
		err: ErrReconciliationConflict,
		info: ErrorInfo{
			Message: "Se detectaron archivos duplicados y se repararon automáticamente.",
			Action:  "",
		},
	},
	{
		err: ErrEmptyInstruction,
		info: ErrorInfo{
			Message: "La instrucción está vacía.",
			Action:  "Describe lo que quieres construir o modificar.",
		},
	},
	{
		err: ErrProjectLocked,
		info: ErrorInfo{
			Message: "Otro proceso de forja está modificando este proyecto.",
			Action:  "Espera a que termine o detén 'forja serve' antes de usar 'forja run'.",
		},
	},
	{
		err: ErrInvalidIntent,
		info: ErrorInfo{
			Message: "El tipo de instrucción no es válido.",
			Action:  "Usa project, correction, style, modify o generate, o deja que se detecte.",
		},
	},
	{
		err: ErrInvalidRequest,
		info: ErrorInfo{
			Message: "La petición no es válida.",
			Action:  "Envía un JSON con el campo 'text'.",
		},
	},
	{
		err: ErrInvalidTransition,
		info: ErrorInfo{
			Message: "La tarea no puede cambiar a ese estado.",
			Action:  "",
		},
	},
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "La configuración no está cargada.",
			Action:  "Comprueba que .forja/config.yaml sea YAML válido.",
		},
	},
	{
		err: ErrConfigInvalidGateway,
		info: ErrorInfo{
			Message: "La configuración del gateway no es válida.",
			Action:  "Revisa la sección 'gateway' de .forja/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidCapability,
		info: ErrorInfo{
			Message: "Una capacidad de modelo está mal configurada.",
			Action:  "Revisa la sección 'capabilities' de .forja/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidOrchestrator,
		info: ErrorInfo{
			Message: "La configuración del orquestador no es válida.",
			Action:  "Revisa la sección 'orchestrator' de .forja/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidServer,
		info: ErrorInfo{
			Message: "La configuración del servidor no es válida.",
			Action:  "Revisa la sección 'server' de .forja/config.yaml.",
		},
	},
	{
		err: ErrPersistFailed,
		info: ErrorInfo{
			Message: "No se pudo guardar el proyecto.",
			Action:  "Comprueba el espacio en disco y los permisos de .forja/.",
		},
	},
	{
		err: ErrInstructionFailed,
		info: ErrorInfo{
			Message: "La instrucción terminó con tareas fallidas.",
			Action:  "Consulta 'forja tasks' para ver el error de cada tarea.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Formato de salida no válido.",
			Action:  "Usa --output text o --output json.",
		},
	},
}

//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo tries a direct lookup first, then errors.Is() for wrapped errors.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a localized, user-facing message for err.
// Unrecognized errors return their own message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns the user-facing message plus a suggested action.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
