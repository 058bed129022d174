package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"customer-retention-engine/internal/models"
)

func TestNew_RejectsDuplicateCodes(t *testing.T) {
	_, err := New([]models.Offer{
		{Code: "OFFER_A", Name: "A"},
		{Code: "OFFER_A", Name: "A again"},
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDuplicateOfferCode)
}

func TestNew_RejectsEmptyCode(t *testing.T) {
	_, err := New([]models.Offer{
		{Code: "  ", Name: "blank"},
	})

	assert.Error(t, err)
}

func TestDefault_ContainsExpectedOffers(t *testing.T) {
	cat := Default()

	offers := cat.Offers()
	assert.Len(t, offers, 6)

	for _, code := range []string{
		"PRICE_DISC_20",
		"PRICE_DISC_30",
		"FEATURE_UPGRADE",
		"TRIAL_EXTEND",
		"SUPPORT_PRIORITY",
		"CUSTOM_SOLUTION",
	} {
		assert.True(t, cat.Contains(code), "expected catalog to contain %s", code)
	}
}

func TestFind(t *testing.T) {
	cat := Default()

	offer, err := cat.Find("TRIAL_EXTEND")
	assert.NoError(t, err)
	assert.Equal(t, "Extended Free Trial", offer.Name)

	_, err = cat.Find("NOT_A_CODE")
	assert.ErrorIs(t, err, models.ErrOfferNotFound)
}

func TestRender_ListsEveryOffer(t *testing.T) {
	cat := Default()
	rendered := cat.Render()

	assert.True(t, strings.HasPrefix(rendered, "AVAILABLE RETENTION OFFERS:"))
	for _, offer := range cat.Offers() {
		assert.Contains(t, rendered, "OFFER_CODE: "+offer.Code)
		assert.Contains(t, rendered, "OFFER_NAME: "+offer.Name)
	}
}
