package directory_test

//go:generate mockgen -source=directory.go -destination=mocks/mocks.go -package=mocks Finder

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cpfgate/internal/directory"
	"cpfgate/internal/directory/mocks"
	dErrors "cpfgate/pkg/domain-errors"
	"cpfgate/pkg/platform/sentinel"
	"cpfgate/pkg/testutil"
)

type LookupSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	finder  *mocks.MockFinder
	service *directory.Service
	router  chi.Router
}

func (s *LookupSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.finder = mocks.NewMockFinder(s.ctrl)
	s.service = directory.NewService(s.finder)
	s.router = chi.NewRouter()
	directory.NewHandler(s.service).Register(s.router)
}

func TestLookupSuite(t *testing.T) {
	suite.Run(t, new(LookupSuite))
}

func (s *LookupSuite) TestService() {
	ctx := context.Background()

	s.Run("normalizes before lookup", func() {
		s.finder.EXPECT().FindByCPF(gomock.Any(), "52998224725").Return(&directory.Record{Username: "maria"}, nil)
		rec, err := s.service.Lookup(ctx, "529.982.247-25")
		s.Require().NoError(err)
		s.Equal("maria", rec.Username)
	})

	s.Run("missing cpf never calls the directory", func() {
		_, err := s.service.Lookup(ctx, " ")
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})

	s.Run("invalid cpf never calls the directory", func() {
		_, err := s.service.Lookup(ctx, `52998224725" or name = "x`)
		s.Equal(dErrors.CodeValidation, dErrors.CodeOf(err))
	})

	s.Run("not found", func() {
		s.finder.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.Lookup(ctx, "52998224725")
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	s.Run("duplicate is internal", func() {
		s.finder.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrDuplicate)
		_, err := s.service.Lookup(ctx, "52998224725")
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})
}

func (s *LookupSuite) TestHandler() {
	s.Run("200 with record", func() {
		s.finder.EXPECT().FindByCPF(gomock.Any(), "52998224725").Return(&directory.Record{
			Username:   "maria",
			Attributes: map[string]string{"email": "maria@example.com"},
		}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/customers/lookup", map[string]string{"cpf": "52998224725"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[directory.LookupResponse](s.T(), rr)
		s.Equal("Customer found", resp.Message)
		s.Equal("maria", resp.Username)
		s.Equal("maria@example.com", resp.Attributes["email"])
	})

	s.Run("400 when missing", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/customers/lookup", map[string]string{})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("400 on malformed json", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/customers/lookup", "{")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("404 when absent", func() {
		s.finder.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/customers/lookup", map[string]string{"cpf": "52998224725"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("500 hides directory errors", func() {
		s.finder.EXPECT().FindByCPF(gomock.Any(), gomock.Any()).Return(nil, errors.New("cognito: AccessDeniedException"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/customers/lookup", map[string]string{"cpf": "52998224725"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		s.NotContains(rr.Body.String(), "AccessDenied")
	})
}

func TestServiceWithoutFinder(t *testing.T) {
	_, err := directory.NewService(nil).Lookup(context.Background(), "52998224725")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConfiguration, dErrors.CodeOf(err))
}
