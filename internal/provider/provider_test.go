package provider

import (
	"context"
	"errors"
	"testing"

	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/config"
	"commerce-mollie/internal/mollie"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// fakeClient implements mollie.Client with per-call hooks. Calls without a
// hook fail the operation so unexpected remote traffic shows up in tests.
type fakeClient struct {
	createPaymentFn func(ctx context.Context, req *mollie.PaymentRequest) (*mollie.Resource, error)
	getPaymentFn    func(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error)
	cancelPaymentFn func(ctx context.Context, id string) error
	createCaptureFn func(ctx context.Context, id string) error
	createRefundFn  func(ctx context.Context, id string, amount mollie.Amount) (*mollie.Refund, error)
	listRefundsFn   func(ctx context.Context, id string) ([]mollie.Refund, error)
	getOrderFn      func(ctx context.Context, id string) (*mollie.Resource, error)
}

var errUnexpectedCall = errors.New("unexpected mollie call")

func (f *fakeClient) CreatePayment(ctx context.Context, req *mollie.PaymentRequest) (*mollie.Resource, error) {
	if f.createPaymentFn == nil {
		return nil, errUnexpectedCall
	}
	return f.createPaymentFn(ctx, req)
}

func (f *fakeClient) GetPayment(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error) {
	if f.getPaymentFn == nil {
		return nil, errUnexpectedCall
	}
	return f.getPaymentFn(ctx, id, includeDetails)
}

func (f *fakeClient) CancelPayment(ctx context.Context, id string) error {
	if f.cancelPaymentFn == nil {
		return errUnexpectedCall
	}
	return f.cancelPaymentFn(ctx, id)
}

func (f *fakeClient) CreateCapture(ctx context.Context, id string) error {
	if f.createCaptureFn == nil {
		return errUnexpectedCall
	}
	return f.createCaptureFn(ctx, id)
}

func (f *fakeClient) CreateRefund(ctx context.Context, id string, amount mollie.Amount) (*mollie.Refund, error) {
	if f.createRefundFn == nil {
		return nil, errUnexpectedCall
	}
	return f.createRefundFn(ctx, id, amount)
}

func (f *fakeClient) ListRefunds(ctx context.Context, id string) ([]mollie.Refund, error) {
	if f.listRefundsFn == nil {
		return nil, nil
	}
	return f.listRefundsFn(ctx, id)
}

func (f *fakeClient) GetOrder(ctx context.Context, id string) (*mollie.Resource, error) {
	if f.getOrderFn == nil {
		return nil, errUnexpectedCall
	}
	return f.getOrderFn(ctx, id)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSettings() config.ProviderSettings {
	return config.ProviderSettings{
		ContinueURL: "https://shop.example/confirmation",
		CancelURL:   "https://shop.example/cart",
		ErrorURL:    "https://shop.example/error",
		CallbackURL: "https://shop.example/api/mollie/callback?order=100042",
		TestAPIKey:  "test_abc123",
		TestMode:    true,
	}
}

func testServices() commerce.Services {
	return commerce.StaticServices{
		Currency:      commerce.Currency{ID: "EUR", Code: "EUR"},
		Country:       commerce.Country{ID: "NL", Code: "NL"},
		PaymentMethod: commerce.PaymentMethod{ID: "mollie", Name: "Mollie", Sku: ""},
	}
}

func newTestProvider(fc *fakeClient, settings config.ProviderSettings) *Provider {
	p := New(settings, testServices())
	p.clients = func(apiKey string) mollie.Client { return fc }
	return p
}

func testOrder() *commerce.Order {
	return &commerce.Order{
		OrderNumber: "100042",
		Reference:   "order-ref-100042",
		CurrencyID:  "EUR",
		Customer: commerce.CustomerInfo{
			FirstName: "Jan",
			LastName:  "Jansen",
			Email:     "jan@example.com",
		},
		Payment: commerce.PaymentDetails{
			CountryID:       "NL",
			PaymentMethodID: "mollie",
		},
		TransactionAmount: commerce.AdjustedAmount{Value: dec("110.00")},
		Properties: map[string]string{
			MetaPaymentID: "tr_7UhSN1zuXS",
		},
		Transaction: commerce.TransactionInfo{
			TransactionID:    "txn-1",
			AmountAuthorized: dec("110.00"),
			Status:           commerce.StatusAuthorized,
		},
	}
}

func TestProvider_GenerateCheckout(t *testing.T) {
	order := testOrder()

	t.Run("Success", func(t *testing.T) {
		var sent *mollie.PaymentRequest
		fc := &fakeClient{
			createPaymentFn: func(ctx context.Context, req *mollie.PaymentRequest) (*mollie.Resource, error) {
				sent = req
				return &mollie.Resource{
					ID:     "tr_7UhSN1zuXS",
					Status: mollie.ResourceStatusOpen,
					Method: "ideal",
					Links: mollie.Links{
						Checkout: &mollie.Link{Href: "https://www.mollie.com/checkout/select-method/7UhSN1zuXS"},
					},
				}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		result, err := p.GenerateCheckout(context.Background(), order)

		assert.NoError(t, err)
		assert.Equal(t, "https://www.mollie.com/checkout/select-method/7UhSN1zuXS", result.CheckoutURL)
		assert.Equal(t, "GET", result.Method)
		assert.Equal(t, "tr_7UhSN1zuXS", result.Metadata[MetaPaymentID])
		assert.Equal(t, "ideal", result.Metadata[MetaPaymentMethod])

		assert.Equal(t, "110.00", sent.Amount.Value)
		assert.Equal(t, "EUR", sent.Amount.Currency)
		assert.Equal(t, "100042", sent.Description)
		assert.Equal(t, "order-ref-100042", sent.Metadata)
		assert.Equal(t, "https://shop.example/api/mollie/callback?order=100042&redirect=true", sent.RedirectURL)
		assert.Equal(t, "https://shop.example/api/mollie/callback?order=100042", sent.WebhookURL)
		assert.Equal(t, "en_US", sent.Locale)
		assert.Empty(t, sent.CaptureMode)
		assert.Equal(t, "Jan", sent.BillingAddress.GivenName)
		assert.Equal(t, "NL", sent.BillingAddress.Country)
	})

	t.Run("LocaleAndManualCapture", func(t *testing.T) {
		settings := testSettings()
		settings.Locale = "nl_NL"
		settings.ManualCapture = true

		var sent *mollie.PaymentRequest
		fc := &fakeClient{
			createPaymentFn: func(ctx context.Context, req *mollie.PaymentRequest) (*mollie.Resource, error) {
				sent = req
				return &mollie.Resource{
					ID:    "tr_1",
					Links: mollie.Links{Checkout: &mollie.Link{Href: "https://checkout"}},
				}, nil
			},
		}
		p := newTestProvider(fc, settings)

		_, err := p.GenerateCheckout(context.Background(), order)

		assert.NoError(t, err)
		assert.Equal(t, "nl_NL", sent.Locale)
		assert.Equal(t, "manual", sent.CaptureMode)
	})

	t.Run("SingleConfiguredMethod", func(t *testing.T) {
		settings := testSettings()
		settings.PaymentMethods = "ideal"

		var sent *mollie.PaymentRequest
		fc := &fakeClient{
			createPaymentFn: func(ctx context.Context, req *mollie.PaymentRequest) (*mollie.Resource, error) {
				sent = req
				return &mollie.Resource{
					ID:    "tr_1",
					Links: mollie.Links{Checkout: &mollie.Link{Href: "https://checkout"}},
				}, nil
			},
		}
		p := newTestProvider(fc, settings)

		_, err := p.GenerateCheckout(context.Background(), order)

		assert.NoError(t, err)
		assert.Equal(t, "ideal", sent.Method)
		assert.Empty(t, sent.Methods)
	})

	t.Run("MultipleConfiguredMethods", func(t *testing.T) {
		settings := testSettings()
		settings.PaymentMethods = "ideal, creditcard, banktransfer"

		var sent *mollie.PaymentRequest
		fc := &fakeClient{
			createPaymentFn: func(ctx context.Context, req *mollie.PaymentRequest) (*mollie.Resource, error) {
				sent = req
				return &mollie.Resource{
					ID:    "tr_1",
					Links: mollie.Links{Checkout: &mollie.Link{Href: "https://checkout"}},
				}, nil
			},
		}
		p := newTestProvider(fc, settings)

		_, err := p.GenerateCheckout(context.Background(), order)

		assert.NoError(t, err)
		assert.Empty(t, sent.Method)
		assert.Equal(t, []string{"ideal", "creditcard", "banktransfer"}, sent.Methods)
	})

	t.Run("MissingCallbackURL", func(t *testing.T) {
		settings := testSettings()
		settings.CallbackURL = ""
		p := newTestProvider(&fakeClient{}, settings)

		result, err := p.GenerateCheckout(context.Background(), order)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, config.ErrMissingSetting)
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		settings := testSettings()
		settings.TestAPIKey = ""
		p := newTestProvider(&fakeClient{}, settings)

		result, err := p.GenerateCheckout(context.Background(), order)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, config.ErrMissingSetting)
	})

	t.Run("NoCheckoutLink", func(t *testing.T) {
		fc := &fakeClient{
			createPaymentFn: func(ctx context.Context, req *mollie.PaymentRequest) (*mollie.Resource, error) {
				return &mollie.Resource{ID: "tr_1", Status: mollie.ResourceStatusOpen}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		result, err := p.GenerateCheckout(context.Background(), order)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, mollie.ErrRemote)
	})

	t.Run("RemoteError", func(t *testing.T) {
		fc := &fakeClient{
			createPaymentFn: func(ctx context.Context, req *mollie.PaymentRequest) (*mollie.Resource, error) {
				return nil, mollie.ErrRemote
			},
		}
		p := newTestProvider(fc, testSettings())

		result, err := p.GenerateCheckout(context.Background(), order)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, mollie.ErrRemote)
	})
}

func TestProvider_FetchStatus(t *testing.T) {
	order := testOrder()

	t.Run("Captured", func(t *testing.T) {
		fc := &fakeClient{
			getPaymentFn: func(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error) {
				assert.Equal(t, "tr_7UhSN1zuXS", id)
				assert.False(t, includeDetails)
				return &mollie.Resource{ID: id, Status: mollie.ResourceStatusPaid}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.FetchStatus(context.Background(), order)

		assert.NoError(t, err)
		assert.Equal(t, "txn-1", update.TransactionID)
		assert.Equal(t, commerce.StatusCaptured, update.Status)
	})

	t.Run("RefundedAmountOverridesStatus", func(t *testing.T) {
		fc := &fakeClient{
			getPaymentFn: func(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error) {
				refunded := mollie.NewAmount("EUR", dec("110.00"))
				return &mollie.Resource{
					ID:             id,
					Status:         mollie.ResourceStatusPaid,
					AmountRefunded: &refunded,
				}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.FetchStatus(context.Background(), order)

		assert.NoError(t, err)
		assert.Equal(t, commerce.StatusRefunded, update.Status)
	})

	t.Run("PendingRefundListed", func(t *testing.T) {
		fc := &fakeClient{
			getPaymentFn: func(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error) {
				return &mollie.Resource{ID: id, Status: mollie.ResourceStatusPaid}, nil
			},
			listRefundsFn: func(ctx context.Context, id string) ([]mollie.Refund, error) {
				return []mollie.Refund{{ID: "re_1", Status: "pending"}}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.FetchStatus(context.Background(), order)

		assert.NoError(t, err)
		assert.Equal(t, commerce.StatusRefunded, update.Status)
	})
}

func TestProvider_Cancel(t *testing.T) {
	order := testOrder()

	t.Run("Success", func(t *testing.T) {
		cancelled := false
		fc := &fakeClient{
			cancelPaymentFn: func(ctx context.Context, id string) error {
				cancelled = true
				assert.Equal(t, "tr_7UhSN1zuXS", id)
				return nil
			},
			getPaymentFn: func(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error) {
				return &mollie.Resource{ID: id, Status: mollie.ResourceStatusCanceled}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.Cancel(context.Background(), order)

		assert.NoError(t, err)
		assert.True(t, cancelled)
		assert.Equal(t, commerce.StatusCancelled, update.Status)
	})

	t.Run("RemoteError", func(t *testing.T) {
		fc := &fakeClient{
			cancelPaymentFn: func(ctx context.Context, id string) error {
				return mollie.ErrRemote
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.Cancel(context.Background(), order)

		assert.Nil(t, update)
		assert.ErrorIs(t, err, mollie.ErrRemote)
	})
}

func TestProvider_Capture(t *testing.T) {
	order := testOrder()

	captured := false
	fc := &fakeClient{
		createCaptureFn: func(ctx context.Context, id string) error {
			captured = true
			assert.Equal(t, "tr_7UhSN1zuXS", id)
			return nil
		},
		getPaymentFn: func(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error) {
			return &mollie.Resource{ID: id, Status: mollie.ResourceStatusPaid}, nil
		},
	}
	p := newTestProvider(fc, testSettings())

	update, err := p.Capture(context.Background(), order)

	assert.NoError(t, err)
	assert.True(t, captured)
	assert.Equal(t, commerce.StatusCaptured, update.Status)
}

func TestProvider_Refund(t *testing.T) {
	order := testOrder()

	t.Run("FullRefund", func(t *testing.T) {
		fc := &fakeClient{
			createRefundFn: func(ctx context.Context, id string, amount mollie.Amount) (*mollie.Refund, error) {
				assert.Equal(t, "tr_7UhSN1zuXS", id)
				assert.Equal(t, "110.00", amount.Value)
				assert.Equal(t, "EUR", amount.Currency)
				return &mollie.Refund{ID: "re_1", Amount: amount, Status: "pending"}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.Refund(context.Background(), order, dec("110.00"))

		assert.NoError(t, err)
		assert.Equal(t, "txn-1", update.TransactionID)
		assert.Equal(t, commerce.StatusRefunded, update.Status)
	})

	t.Run("PartialRefund", func(t *testing.T) {
		fc := &fakeClient{
			createRefundFn: func(ctx context.Context, id string, amount mollie.Amount) (*mollie.Refund, error) {
				return &mollie.Refund{ID: "re_1", Amount: amount, Status: "pending"}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.Refund(context.Background(), order, dec("25.00"))

		assert.NoError(t, err)
		assert.Equal(t, commerce.StatusPartiallyRefunded, update.Status)
	})

	t.Run("FailedRefundIsFatal", func(t *testing.T) {
		fc := &fakeClient{
			createRefundFn: func(ctx context.Context, id string, amount mollie.Amount) (*mollie.Refund, error) {
				return &mollie.Refund{ID: "re_1", Amount: amount, Status: mollie.RefundStatusFailed}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.Refund(context.Background(), order, dec("25.00"))

		assert.Nil(t, update)
		assert.ErrorIs(t, err, ErrRefundFailed)
	})

	t.Run("RemoteError", func(t *testing.T) {
		fc := &fakeClient{
			createRefundFn: func(ctx context.Context, id string, amount mollie.Amount) (*mollie.Refund, error) {
				return nil, mollie.ErrRemote
			},
		}
		p := newTestProvider(fc, testSettings())

		update, err := p.Refund(context.Background(), order, dec("25.00"))

		assert.Nil(t, update)
		assert.ErrorIs(t, err, mollie.ErrRemote)
	})
}

func TestProvider_ResolvePaymentID(t *testing.T) {
	t.Run("FromOrderProperty", func(t *testing.T) {
		fc := &fakeClient{
			getPaymentFn: func(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error) {
				assert.Equal(t, "tr_direct", id)
				return &mollie.Resource{ID: id, Status: mollie.ResourceStatusPaid}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		order := testOrder()
		order.Properties = map[string]string{MetaPaymentID: "tr_direct"}

		_, err := p.FetchStatus(context.Background(), order)
		assert.NoError(t, err)
	})

	t.Run("FromParentOrderEmbeddedPayments", func(t *testing.T) {
		fc := &fakeClient{
			getOrderFn: func(ctx context.Context, id string) (*mollie.Resource, error) {
				assert.Equal(t, "ord_kEn1PlbGa", id)
				return &mollie.Resource{
					ID: id,
					Embedded: &mollie.Embedded{
						Payments: []mollie.Resource{
							{ID: "tr_expired", Status: mollie.ResourceStatusExpired},
							{ID: "tr_paid", Status: mollie.ResourceStatusPaid},
							{ID: "tr_also_paid", Status: mollie.ResourceStatusPaid},
						},
					},
				}, nil
			},
			getPaymentFn: func(ctx context.Context, id string, includeDetails bool) (*mollie.Resource, error) {
				// First paid embedded payment wins.
				assert.Equal(t, "tr_paid", id)
				return &mollie.Resource{ID: id, Status: mollie.ResourceStatusPaid}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		order := testOrder()
		order.Properties = map[string]string{MetaOrderID: "ord_kEn1PlbGa"}

		_, err := p.FetchStatus(context.Background(), order)
		assert.NoError(t, err)
	})

	t.Run("NoReferenceAtAll", func(t *testing.T) {
		p := newTestProvider(&fakeClient{}, testSettings())

		order := testOrder()
		order.Properties = nil

		update, err := p.FetchStatus(context.Background(), order)

		assert.Nil(t, update)
		assert.ErrorIs(t, err, ErrReferenceNotFound)
	})

	t.Run("NoPaidPaymentOnParentOrder", func(t *testing.T) {
		fc := &fakeClient{
			getOrderFn: func(ctx context.Context, id string) (*mollie.Resource, error) {
				return &mollie.Resource{
					ID: id,
					Embedded: &mollie.Embedded{
						Payments: []mollie.Resource{
							{ID: "tr_open", Status: mollie.ResourceStatusOpen},
						},
					},
				}, nil
			},
		}
		p := newTestProvider(fc, testSettings())

		order := testOrder()
		order.Properties = map[string]string{MetaOrderID: "ord_kEn1PlbGa"}

		update, err := p.FetchStatus(context.Background(), order)

		assert.Nil(t, update)
		assert.ErrorIs(t, err, ErrReferenceNotFound)
	})
}
