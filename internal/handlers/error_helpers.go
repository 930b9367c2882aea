package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/consultahub/consulta-scheduler/internal/httperr"
)

// businessMessages maps business codes to the client-facing message.
var businessMessages = map[string]string{
	httperr.CodeSlotUnavailable:  "Horário indisponível.",
	httperr.CodeAlreadyPostponed: "A consulta já foi remarcada uma vez.",
	httperr.CodeBookingNotFound:  "Consulta não encontrada.",
	httperr.CodeRuleNotFound:     "Regra de disponibilidade não encontrada.",
	httperr.CodeInvalidSlotTime:  "Horário fora da grade de atendimento.",
	httperr.CodePastDate:         "Data ou horário no passado.",
	httperr.CodeInvalidState:     "A consulta não permite esta operação.",
	httperr.CodePaymentFailed:    "Falha no pagamento.",
	httperr.CodeInvalidRule:      "Regra de disponibilidade inválida.",
	"provider_not_found":         "Profissional não encontrado.",
	"invalid_date_or_time":       "Data ou hora inválida.",
}

var businessStatus = map[string]int{
	httperr.CodeSlotUnavailable:  http.StatusConflict,
	httperr.CodeAlreadyPostponed: http.StatusConflict,
	httperr.CodeInvalidState:     http.StatusConflict,
	httperr.CodeBookingNotFound:  http.StatusNotFound,
	httperr.CodeRuleNotFound:     http.StatusNotFound,
	"provider_not_found":         http.StatusNotFound,
	httperr.CodePaymentFailed:    http.StatusBadGateway,
}

// writeUsecaseError translates a use case error into an HTTP response.
// Business errors carry their code and a mapped status; anything else is a 500.
func writeUsecaseError(c *gin.Context, err error) {
	code := httperr.BusinessCode(err)
	if code == "" {
		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	status, ok := businessStatus[code]
	if !ok {
		status = http.StatusBadRequest
	}

	msg, ok := businessMessages[code]
	if !ok {
		msg = "Operação inválida."
	}

	httperr.Write(c, status, code, msg)
}
