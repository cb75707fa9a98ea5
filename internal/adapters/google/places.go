package google

import (
	"fmt"
	"os"
	"sort"
)

// propertyPlaceIDs maps listing ids to their Google Place IDs. Env overrides
// (GOOGLE_PLACE_ID_<listingId>, GOOGLE_PLACE_ID_DEFAULT) take precedence so
// deployments can repoint a listing without a rebuild.
var propertyPlaceIDs = map[int64]string{
	253093: "ChIJc2nSALkEdkgRkuoJJBfzkUI", // Shoreditch
	112233: "ChIJtV5bzSAFdkgRpwLZFPWrJgo", // Canary Wharf
	556677: "ChIJNcV0s9QEdkgRd31NxPUnbWQ", // Soho
	334455: "ChIJKZQaXxwbdkgRWLo89tC-_V8", // Camden Market area
	778899: "ChIJv-AZZAARdkgRQe69wntqSFI", // Notting Hill
}

const defaultListingID = int64(253093)

// ResolvePlaceID picks the Place ID for a listing: explicit value first,
// then the per-listing env override, then the static table, then the
// portfolio default. Empty string means nothing could be resolved.
func ResolvePlaceID(listingID *int64, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if listingID != nil {
		if v := os.Getenv(fmt.Sprintf("GOOGLE_PLACE_ID_%d", *listingID)); v != "" {
			return v
		}
		if v, ok := propertyPlaceIDs[*listingID]; ok {
			return v
		}
	}
	if v := os.Getenv("GOOGLE_PLACE_ID_DEFAULT"); v != "" {
		return v
	}
	return propertyPlaceIDs[defaultListingID]
}

// KnownListings returns the listing ids with a statically mapped place, in
// ascending order.
func KnownListings() []int64 {
	out := make([]int64, 0, len(propertyPlaceIDs))
	for id := range propertyPlaceIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
