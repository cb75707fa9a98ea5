package hostaway

import (
	"time"

	"flex_reviews/internal/domain"
)

func pf(f float64) *float64 { return &f }

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

// SeedReviews is the bundled fixture set used when the upstream account
// carries no review data. Shapes mirror real API records: 0-10 ratings,
// per-category sub-ratings, mixed channels and statuses.
func SeedReviews() []domain.Review {
	return []domain.Review{
		{
			ID: 7453, Type: domain.TypeGuestToHost, Status: domain.StatusPublished,
			Rating: pf(10), PublicReview: "Spotless apartment, the host team was super responsive and check-in was effortless.",
			ReviewCategory: []domain.CategoryRating{
				{Category: "cleanliness", Rating: pf(10)},
				{Category: "communication", Rating: pf(10)},
				{Category: "location", Rating: pf(9)},
			},
			SubmittedAt: at(2024, time.January, 5, 10, 30), GuestName: "Amelia Clarke",
			ListingName: "2B N1 A - 29 Shoreditch Heights", ListingID: 253093, Channel: "Airbnb",
		},
		{
			ID: 7454, Type: domain.TypeGuestToHost, Status: domain.StatusPublished,
			Rating: pf(8), PublicReview: "Great location near the market, the bed was comfy. Wifi dropped a couple of times.",
			ReviewCategory: []domain.CategoryRating{
				{Category: "cleanliness", Rating: pf(8)},
				{Category: "wifi", Rating: pf(6)},
				{Category: "location", Rating: pf(10)},
			},
			SubmittedAt: at(2024, time.January, 18, 9, 15), GuestName: "Tom Becker",
			ListingName: "2B N1 A - 29 Shoreditch Heights", ListingID: 253093, Channel: "Booking",
		},
		{
			ID: 7455, Type: domain.TypeGuestToHost, Status: domain.StatusPublished,
			Rating: pf(4), PublicReview: "Noisy street at night and the heating took ages to warm up the flat.",
			ReviewCategory: []domain.CategoryRating{
				{Category: "cleanliness", Rating: pf(7)},
				{Category: "noise", Rating: pf(3)},
				{Category: "heating", Rating: pf(4)},
			},
			SubmittedAt: at(2024, time.February, 2, 19, 45), GuestName: "Lucia Moretti",
			ListingName: "2B N1 A - 29 Shoreditch Heights", ListingID: 253093,
		},
		{
			ID: 7460, Type: domain.TypeGuestToHost, Status: domain.StatusPublished,
			Rating: pf(9), PublicReview: "Lovely canal views, fully equipped kitchen and a proper desk for remote work.",
			ReviewCategory: []domain.CategoryRating{
				{Category: "cleanliness", Rating: pf(9)},
				{Category: "amenities", Rating: pf(9)},
			},
			SubmittedAt: at(2024, time.February, 14, 8, 0), GuestName: "Priya Nair",
			ListingName: "1B E2 C - 14 Canary Wharf Lofts", ListingID: 112233, Channel: "Airbnb",
		},
		{
			ID: 7461, Type: domain.TypeGuestToHost, Status: domain.StatusPending,
			Rating: nil, PublicReview: "Stay was fine overall, still deciding on the score.",
			ReviewCategory: []domain.CategoryRating{
				{Category: "cleanliness", Rating: nil},
			},
			SubmittedAt: at(2024, time.February, 20, 12, 10), GuestName: "Jonas Weber",
			ListingName: "1B E2 C - 14 Canary Wharf Lofts", ListingID: 112233, Channel: "VRBO",
		},
		{
			ID: 7462, Type: domain.TypeHostToGuest, Status: domain.StatusPublished,
			Rating: pf(10), PublicReview: "Wonderful guests, left the loft in perfect condition.",
			ReviewCategory: []domain.CategoryRating{},
			SubmittedAt:    at(2024, time.March, 1, 17, 30), GuestName: "Jonas Weber",
			ListingName: "1B E2 C - 14 Canary Wharf Lofts", ListingID: 112233,
		},
		{
			ID: 7470, Type: domain.TypeGuestToHost, Status: domain.StatusPublished,
			Rating: pf(3), PublicReview: "Check-in instructions were confusing and the place felt dirty on arrival.",
			ReviewCategory: []domain.CategoryRating{
				{Category: "cleanliness", Rating: pf(3)},
				{Category: "check-in", Rating: pf(2)},
			},
			SubmittedAt: at(2024, time.March, 8, 21, 5), GuestName: "Mark Ellis",
			ListingName: "Studio W1 B - 5 Soho Mews", ListingID: 556677, Channel: "Booking",
		},
		{
			ID: 7471, Type: domain.TypeGuestToHost, Status: domain.StatusArchived,
			Rating: pf(6), PublicReview: "Decent studio, friendly concierge, though the sofa has seen better days.",
			ReviewCategory: []domain.CategoryRating{
				{Category: "comfort", Rating: pf(5)},
				{Category: "staff", Rating: pf(8)},
			},
			SubmittedAt: at(2024, time.March, 15, 14, 20), GuestName: "Sofia Laurent",
			ListingName: "Studio W1 B - 5 Soho Mews", ListingID: 556677, Channel: "Airbnb",
		},
	}
}
