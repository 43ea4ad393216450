package cmd

import (
	"github.com/dcalliari/appe/internal/auth"
	bookingDatamodel "github.com/dcalliari/appe/internal/core/datamodel/booking"
	documentDatamodel "github.com/dcalliari/appe/internal/core/datamodel/document"
	noticeDatamodel "github.com/dcalliari/appe/internal/core/datamodel/notice"
	userDatamodel "github.com/dcalliari/appe/internal/core/datamodel/user"
	visitorDatamodel "github.com/dcalliari/appe/internal/core/datamodel/visitor"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = ginkgo.Describe("seedDatabase", func() {
	var db *gorm.DB

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(db.AutoMigrate(
			&userDatamodel.User{},
			&noticeDatamodel.Notice{},
			&visitorDatamodel.VisitorRequest{},
			&bookingDatamodel.SpaceBooking{},
			&documentDatamodel.Document{},
		)).To(gomega.Succeed())
		gomega.Expect(db.Exec(`CREATE TABLE chat_messages (id TEXT PRIMARY KEY)`).Error).To(gomega.Succeed())
	})

	count := func(model interface{}) int64 {
		var n int64
		gomega.Expect(db.Model(model).Count(&n).Error).To(gomega.Succeed())
		return n
	}

	ginkgo.It("creates staff, residents and notices once", func() {
		gomega.Expect(seedDatabase(db, bcrypt.MinCost, false)).To(gomega.Succeed())
		gomega.Expect(seedDatabase(db, bcrypt.MinCost, false)).To(gomega.Succeed())

		gomega.Expect(count(&userDatamodel.User{})).To(gomega.Equal(int64(len(seedUsers))))
		gomega.Expect(count(&noticeDatamodel.Notice{})).To(gomega.Equal(int64(len(seedNotices))))
	})

	ginkgo.It("stores a usable password hash", func() {
		gomega.Expect(seedDatabase(db, bcrypt.MinCost, false)).To(gomega.Succeed())

		var admin userDatamodel.User
		gomega.Expect(db.Where("apartment = ?", "ADM").First(&admin).Error).To(gomega.Succeed())
		gomega.Expect(admin.Role).To(gomega.Equal("admin"))
		gomega.Expect(auth.VerifyPassword(admin.PasswordHash, seedPassword)).To(gomega.Succeed())
	})

	ginkgo.It("wipes existing rows with clear", func() {
		gomega.Expect(db.Create(&userDatamodel.User{Apartment: "999", Name: "Old", PasswordHash: "x"}).Error).To(gomega.Succeed())

		gomega.Expect(seedDatabase(db, bcrypt.MinCost, true)).To(gomega.Succeed())

		var n int64
		gomega.Expect(db.Model(&userDatamodel.User{}).Where("apartment = ?", "999").Count(&n).Error).To(gomega.Succeed())
		gomega.Expect(n).To(gomega.BeZero())
		gomega.Expect(count(&userDatamodel.User{})).To(gomega.Equal(int64(len(seedUsers))))
	})
})
