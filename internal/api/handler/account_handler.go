package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
)

type AccountHandler struct {
	repo ports.AccountRepository
}

func NewAccountHandler(repo ports.AccountRepository) *AccountHandler {
	return &AccountHandler{repo: repo}
}

// Me returns the account behind the current session token.
//
// @Summary      Current account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountSummary
// @Failure      401  {object}  errorResponse
// @Router       /me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	accountID, _ := c.Get("account_id").(string)
	if accountID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	account, err := h.repo.FindByID(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summarize(account))
}

// ListEnrolled returns every account with a face enrollment. Admin only:
// operators use it to audit the gallery the matcher scans.
//
// @Summary      List face-enrolled accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountListResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/accounts [get]
func (h *AccountHandler) ListEnrolled(c echo.Context) error {
	accounts, err := h.repo.ListEnrolled(c.Request().Context())
	if err != nil {
		return err
	}

	summaries := make([]accountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, summarize(account))
	}

	return c.JSON(http.StatusOK, accountListResponse{Accounts: summaries, Total: len(summaries)})
}

func summarize(account *domain.Account) accountSummary {
	return accountSummary{
		ID:           account.ID,
		Username:     account.Username,
		Email:        account.Email,
		Role:         account.Role,
		HasPassword:  account.HasPassword(),
		FaceEnrolled: account.HasTemplate(),
		External:     account.HasExternalIdentity(),
	}
}
