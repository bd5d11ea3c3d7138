package paymentValidator

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"academy/middleware"
)

var validate = validator.New()

// SubmitProofRequest is the payment proof submission body. Evidence can
// arrive as a multipart file instead of a URL; the handler checks that
// at least one of the two is present.
type SubmitProofRequest struct {
	ProofURL string `json:"proof_url" form:"proof_url" validate:"omitempty,url,max=2048"`
	Notes    string `json:"notes" form:"notes" validate:"max=2000"`
}

// SubmitProof validates the course ID parameter and the submission body.
func SubmitProof() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := strconv.Atoi(strings.TrimSpace(c.Params("id")))
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(SubmitProofRequest)
		if err := c.BodyParser(reqData); err != nil && err != fiber.ErrUnprocessableEntity {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "ProofURL":
					errors["proof_url"] = "Proof URL must be a valid URL!"
				case "Notes":
					errors["notes"] = "Notes must be at most 2000 characters!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		// At least one piece of evidence is required
		_, fileErr := c.FormFile("proof_file")
		if fileErr != nil && reqData.ProofURL == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Proof file or proof URL is required!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedProofSubmission", reqData)
		return c.Next()
	}
}
