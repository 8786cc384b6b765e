package response

import "github.com/gin-gonic/gin"

// OK builds {"success": true, ...fields}.
func OK(fields gin.H) gin.H {
	out := gin.H{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Error builds {"success": false, "error": msg}; an empty msg takes the
// default text of code.
func Error(code int, msg string) gin.H {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return gin.H{"success": false, "error": msg}
}
