package cache

import "fmt"

// Key builders for the vendor catalog. The catalog is read-mostly
// reference data; entries expire by TTL rather than explicit invalidation.

func VendorsKey() string {
	return "catalog:vendors"
}

func VendorServicesKey(vendorID string) string {
	return fmt.Sprintf("catalog:services:%s", vendorID)
}
