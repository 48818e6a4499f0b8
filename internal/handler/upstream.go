package handler

import (
	"encoding/json"
	"errors"

	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/gofiber/fiber/v3"
)

// relayUpstream writes the forwarder's result to the client: the upstream
// body byte-for-byte on success, or the uniform {error: message} envelope
// with the upstream's own status code on failure.
func relayUpstream(c fiber.Ctx, raw json.RawMessage, err error) error {
	if err != nil {
		var ue *port.UpstreamError
		if errors.As(err, &ue) {
			return c.Status(ue.Status).JSON(fiber.Map{"error": ue.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}
