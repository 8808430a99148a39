package search

import (
	"errors"
	"fmt"

	"github.com/alex-user-go/feriados/internal/holiday"
	"github.com/alex-user-go/feriados/internal/providers"
)

// User-facing messages.
const (
	MsgInvalidYear  = "Ano deve estar entre 1900 e 2199."
	MsgConnectivity = "Não foi possível conectar à BrasilAPI."
	MsgPrompt       = "Busque um ano para carregar os feriados da BrasilAPI."
	MsgMonthEmpty   = "Não há feriados para o mês selecionado nesse ano."
)

// UserMessage converts a search error into the message shown to the user.
// Anything that is neither a validation nor a status error is reported as
// a connectivity problem.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsValidation(err) {
		return MsgInvalidYear
	}
	var statusErr *providers.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Erro ao buscar feriados (status %d).", statusErr.StatusCode)
	}
	return MsgConnectivity
}

// StatusMessage reports how many holidays a successful search found.
func StatusMessage(year, n int) string {
	if n == 0 {
		return fmt.Sprintf("Nenhum feriado encontrado para %d.", year)
	}
	return fmt.Sprintf("Encontrados %d feriados para %d.", n, year)
}

// SummaryMessage describes how many of the fetched holidays are shown.
func SummaryMessage(year, shown, total int, f holiday.MonthFilter) string {
	msg := fmt.Sprintf("Mostrando %d de %d feriados para %d", shown, total, year)
	if f.All() {
		return msg
	}
	return fmt.Sprintf("%s (%s).", msg, holiday.MonthName(f.Month()))
}
