package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/companies"
	"github.com/jrsteele09/go-inventory-ui/companies/companyapi"
)

// maxLogoBytes bounds the company logo upload
const maxLogoBytes = 5 << 20

// CompanyFormData is the model of the company create and edit forms
type CompanyFormData struct {
	Editing bool
	Company companies.Company
}

func companyPath(id int64) string {
	return fmt.Sprintf("%s/%d", RouteAdminCompanies, id)
}

func companyRequestFrom(r *http.Request) companies.CreateRequest {
	return companies.CreateRequest{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Phone:       strings.TrimSpace(r.FormValue("phone")),
		Address:     strings.TrimSpace(r.FormValue("address")),
		Website:     strings.TrimSpace(r.FormValue("website")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
}

func companyFromRequest(id int64, req companies.CreateRequest) companies.Company {
	return companies.Company{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Website:     req.Website,
		Description: req.Description,
	}
}

func (s *Server) AdminCompaniesListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		list, err := ws.Companies.List(r.Context())
		if err != nil {
			s.handleAPIError(w, r, err, RouteDashboard)
			return
		}

		data := s.page(r, "Companies", "companies")
		data.Data = list
		s.render(w, r, http.StatusOK, "companies_list.html", data)
	}
}

func (s *Server) AdminCompanyNewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(r, "New company", "companies")
		data.Data = CompanyFormData{}
		s.render(w, r, http.StatusOK, "company_form.html", data)
	}
}

func (s *Server) AdminCompanyCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())

		req := companyRequestFrom(r)
		created, err := ws.Companies.Create(r.Context(), req)
		if fields := validationFields(err); fields != nil {
			data := s.page(r, "New company", "companies")
			data.Fields = fields
			data.Data = CompanyFormData{Company: companyFromRequest(0, req)}
			s.render(w, r, http.StatusUnprocessableEntity, "company_form.html", data)
			return
		}
		if err != nil {
			s.handleAPIError(w, r, err, RouteAdminCompanyNew)
			return
		}
		redirectSuccess(w, r, companyPath(created.ID))
	}
}

func (s *Server) AdminCompanyDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		company, err := ws.Companies.Get(r.Context(), pathID(r))
		if err != nil {
			s.handleAPIError(w, r, err, RouteAdminCompanies)
			return
		}

		data := s.page(r, company.Name, "companies")
		data.Data = CompanyFormData{Company: *company}
		s.render(w, r, http.StatusOK, "company_detail.html", data)
	}
}

func (s *Server) AdminCompanyEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		company, err := ws.Companies.Get(r.Context(), pathID(r))
		if err != nil {
			s.handleAPIError(w, r, err, RouteAdminCompanies)
			return
		}

		data := s.page(r, "Edit "+company.Name, "companies")
		data.Data = CompanyFormData{Editing: true, Company: *company}
		s.render(w, r, http.StatusOK, "company_form.html", data)
	}
}

func (s *Server) AdminCompanyUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())
		id := pathID(r)

		req := companyRequestFrom(r)
		_, err := ws.Companies.Update(r.Context(), companies.UpdateInput{ID: id, UpdateRequest: companies.UpdateRequest(req)})
		if fields := validationFields(err); fields != nil {
			data := s.page(r, "Edit company", "companies")
			data.Fields = fields
			data.Data = CompanyFormData{Editing: true, Company: companyFromRequest(id, req)}
			s.render(w, r, http.StatusUnprocessableEntity, "company_form.html", data)
			return
		}
		if err != nil {
			s.handleAPIError(w, r, err, companyPath(id))
			return
		}
		redirectSuccess(w, r, companyPath(id))
	}
}

func (s *Server) AdminCompanyDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		id := pathID(r)
		if err := ws.Companies.Delete(r.Context(), id); err != nil {
			s.handleAPIError(w, r, err, companyPath(id))
			return
		}
		redirectSuccess(w, r, RouteAdminCompanies)
	}
}

// AdminCompanyImageHandler forwards the uploaded logo to the backend
func (s *Server) AdminCompanyImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
		if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
			redirectWithError(w, r, companyPath(id), "The image is too large or the upload is invalid")
			return
		}

		file, header, err := r.FormFile(companyapi.ImageField)
		if err != nil {
			redirectWithError(w, r, companyPath(id), "Choose an image to upload")
			return
		}
		defer file.Close()

		ws := workspaceFrom(r.Context())
		upload := companyapi.ImageUpload{
			CompanyID: id,
			Filename:  filepath.Base(header.Filename),
			Content:   file,
		}
		if _, err := ws.Companies.UploadImage(r.Context(), upload); err != nil {
			s.handleAPIError(w, r, err, companyPath(id))
			return
		}
		redirectSuccess(w, r, companyPath(id))
	}
}
