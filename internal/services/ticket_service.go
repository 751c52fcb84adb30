package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"busticket/internal/domain/models"
	"busticket/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// TicketService renders the PDF e-ticket of a booking.
type TicketService struct {
	Bookings  BookingService
	RequestID string
	Loader    func(ctx context.Context, userID, bookingID int64) (models.BookingWithTrip, error)
}

func (s TicketService) load(ctx context.Context, userID, bookingID int64) (models.BookingWithTrip, error) {
	if s.Loader != nil {
		return s.Loader(ctx, userID, bookingID)
	}
	return s.Bookings.GetOwned(ctx, userID, bookingID)
}

// GenerateETicket returns the PDF bytes and a download filename.
func (s TicketService) GenerateETicket(ctx context.Context, userID, bookingID int64) ([]byte, string, error) {
	b, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "ticket", "generate_eticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildETicketPDF(b)
}

func buildETicketPDF(b models.BookingWithTrip) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUS E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking      : #%d", b.ID),
		fmt.Sprintf("Bus          : %s", safe(b.Trip.BusName, "-")),
		fmt.Sprintf("Route        : %s -> %s", safe(b.Trip.Origin, "-"), safe(b.Trip.Destination, "-")),
		fmt.Sprintf("Departure    : %s", utils.FormatDateTime(b.Trip.DepartureTime)),
		fmt.Sprintf("Seats        : %s", safe(strings.Join(b.SelectedSeats, ", "), "-")),
		fmt.Sprintf("Total        : %s", utils.FormatRupiah(b.TotalPrice)),
		fmt.Sprintf("Booked at    : %s", utils.FormatDateTime(b.BookingTime)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show this e-ticket to the crew before boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", b.ID, safeFilenamePart(b.Trip.Origin+"_"+b.Trip.Destination))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
